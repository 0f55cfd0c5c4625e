package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type postgresRepo struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRepo(db *sqlx.DB) *postgresRepo {
	return &postgresRepo{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var orderColumns = []string{
	"order_uid", "number", "customer_name", "customer_email", "customer_phone",
	"zip", "city", "street", "country",
	"shipping_code", "shipping_name", "shipping_type",
	"subtotal_cents", "shipping_cents", "total_cents",
	"status", "payment_confirmed", "authorization_id",
	"created_at", "updated_at",
}

func (r *postgresRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	query, args := r.qb.Insert("orders").
		Columns(orderColumns...).
		Values(
			o.OrderUID, o.Number, o.Customer.Name, o.Customer.Email, nullString(o.Customer.Phone),
			o.Customer.Address.ZIP, nullString(o.Customer.Address.City), nullString(o.Customer.Address.Street), o.Customer.Address.Country,
			o.Shipping.ServiceCode, o.Shipping.Name, string(o.Shipping.Type),
			o.SubtotalCents, o.ShippingCents, o.TotalCents,
			string(o.Status), o.PaymentConfirmed, nullString(o.AuthorizationID),
			o.CreatedAt, o.UpdatedAt,
		).
		Suffix("ON CONFLICT (order_uid) DO NOTHING").
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *postgresRepo) CreateOrderItems(ctx context.Context, orderUID string, items []entities.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.qb.Insert("order_items").
		Columns("order_uid", "product_id", "variant_id", "name", "quantity", "unit_price_cents", "unit_weight_grams")

	for _, it := range items {
		q = q.Values(orderUID, it.ProductID, nullString(it.VariantID), it.Name, it.Quantity, it.UnitPriceCents, it.UnitWeightGrams)
	}

	query, args := q.MustSql()
	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error) {
	query, args := r.qb.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_uid": orderUID}).
		MustSql()

	var order Order
	err := r.getContext(ctx, &order, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Order{}, entities.ErrOrderNotFound
	}
	if err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order: %w", err)
	}

	query, args = r.qb.Select(
		"order_uid", "product_id", "variant_id", "name", "quantity", "unit_price_cents", "unit_weight_grams").
		From("order_items").
		Where(sq.Eq{"order_uid": orderUID}).
		MustSql()

	var items []OrderItem
	if err := r.selectContext(ctx, &items, query, args...); err != nil {
		return entities.Order{}, fmt.Errorf("failed to get order items: %w", err)
	}

	shipment, err := r.getShipmentRow(ctx, orderUID)
	if err != nil {
		return entities.Order{}, err
	}

	return OrderToEntity(order, items, shipment), nil
}

// UpdateOrderStatus performs a compare-and-swap on the stored status. A zero
// row count means another writer changed the status since it was read.
func (r *postgresRepo) UpdateOrderStatus(ctx context.Context, orderUID string, expected, next entities.OrderStatus) error {
	query, args := r.qb.Update("orders").
		Set("status", string(next)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"order_uid": orderUID, "status": string(expected)}).
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return entities.ErrStatusConflict
	}
	return nil
}

func (r *postgresRepo) CreateShipment(ctx context.Context, orderUID string) error {
	query, args := r.qb.Insert("shipments").
		Columns("order_uid", "status", "updated_at").
		Values(orderUID, string(entities.ShipmentStatusAwaiting), time.Now().UTC()).
		Suffix("ON CONFLICT (order_uid) DO NOTHING").
		MustSql()

	_, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetShipment(ctx context.Context, orderUID string) (entities.Shipment, error) {
	shipment, err := r.getShipmentRow(ctx, orderUID)
	if err != nil {
		return entities.Shipment{}, err
	}
	if shipment == nil {
		return entities.Shipment{}, entities.ErrShipmentNotFound
	}
	return ShipmentToEntity(*shipment), nil
}

// UpdateShipment is the shipment-side compare-and-swap. Optional tracking
// fields are only written when the event carried them.
func (r *postgresRepo) UpdateShipment(ctx context.Context, orderUID string, expected, next entities.ShipmentStatus, upd entities.ShipmentUpdate) error {
	q := r.qb.Update("shipments").
		Set("status", string(next)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"order_uid": orderUID, "status": string(expected)})

	if upd.TrackingNumber != "" {
		q = q.Set("tracking_number", upd.TrackingNumber)
	}
	if upd.FailureReason != "" {
		q = q.Set("failure_reason", upd.FailureReason)
	}
	if upd.PickupPoint != "" {
		q = q.Set("pickup_point", upd.PickupPoint)
	}

	query, args := q.MustSql()
	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update shipment: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return entities.ErrStatusConflict
	}
	return nil
}

// CreateNotification is the at-most-once check-and-set: it reports whether
// this (order, kind) pair was recorded for the first time.
func (r *postgresRepo) CreateNotification(ctx context.Context, orderUID string, kind entities.TransitionKind) (bool, error) {
	query, args := r.qb.Insert("notifications").
		Columns("order_uid", "kind", "created_at").
		Values(orderUID, string(kind), time.Now().UTC()).
		Suffix("ON CONFLICT (order_uid, kind) DO NOTHING").
		MustSql()

	res, err := r.execContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to create notification record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postgresRepo) getShipmentRow(ctx context.Context, orderUID string) (*Shipment, error) {
	query, args := r.qb.Select(
		"order_uid", "status", "tracking_number", "failure_reason", "pickup_point", "updated_at").
		From("shipments").
		Where(sq.Eq{"order_uid": orderUID}).
		MustSql()

	var shipment Shipment
	err := r.getContext(ctx, &shipment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return &shipment, nil
}

func (r *postgresRepo) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

func (r *postgresRepo) getContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return r.db.GetContext(ctx, dest, query, args...)
}

func (r *postgresRepo) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	tx := trm.ExtractTx(ctx)
	if tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return r.db.SelectContext(ctx, dest, query, args...)
}
