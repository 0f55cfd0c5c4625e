package entities

import "fmt"

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

// ShipmentStatus tracks delivery progress independently of the order status.
type ShipmentStatus string

const (
	ShipmentStatusAwaiting       ShipmentStatus = "AWAITING_SHIPMENT"
	ShipmentStatusShipped        ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered      ShipmentStatus = "DELIVERED"
	ShipmentStatusFailedDelivery ShipmentStatus = "FAILED_DELIVERY"
)

// Shipment transitions are strictly ordered. FAILED_DELIVERY is reachable only
// from SHIPPED and is terminal for the delivery attempt.
var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusAwaiting:       {ShipmentStatusShipped},
	ShipmentStatusShipped:        {ShipmentStatusDelivered, ShipmentStatusFailedDelivery},
	ShipmentStatusDelivered:      {},
	ShipmentStatusFailedDelivery: {},
}

func ParseShipmentStatus(s string) (ShipmentStatus, error) {
	status := ShipmentStatus(s)
	if _, ok := shipmentTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusFailedDelivery
}

func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ShipmentStatus) String() string {
	return string(s)
}

// TransitionKind identifies a lifecycle transition for notification purposes.
type TransitionKind string

const (
	TransitionConfirmed      TransitionKind = "CONFIRMED"
	TransitionProcessing     TransitionKind = "PROCESSING"
	TransitionCompleted      TransitionKind = "COMPLETED"
	TransitionCancelled      TransitionKind = "CANCELLED"
	TransitionShipped        TransitionKind = "SHIPPED"
	TransitionDelivered      TransitionKind = "DELIVERED"
	TransitionDeliveryFailed TransitionKind = "FAILED_DELIVERY"
)
