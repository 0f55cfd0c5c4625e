package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avdeev-dev/fulfillment-service/internal/entities"
	"github.com/avdeev-dev/fulfillment-service/internal/middleware"
	"github.com/avdeev-dev/fulfillment-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Rate-limited action namespaces.
const (
	ActionPasswordReset = "password-reset"
	ActionAdminCreate   = "admin-create"
)

type CheckoutService interface {
	Checkout(ctx context.Context, cart entities.Cart) (entities.Order, error)
}

type OrderService interface {
	GetOrderByID(ctx context.Context, orderUID string) (entities.Order, error)
	UpdateOrderStatus(ctx context.Context, orderUID string, next entities.OrderStatus, override bool) (entities.Order, error)
	UpdateShipmentStatus(ctx context.Context, orderUID string, next entities.ShipmentStatus, upd entities.ShipmentUpdate) (entities.Order, error)
}

type ShippingService interface {
	Quote(ctx context.Context, destinationZIP, country string, weightGrams int) entities.ShippingQuote
}

type RateLimiter interface {
	Allow(ctx context.Context, action, identifier string) bool
	Inspect(ctx context.Context, action, identifier string) (int64, time.Duration, error)
}

// Integration exposes what an operator may learn about an outbound
// collaborator: presence and shape of the configuration, never the secret.
type Integration interface {
	Configured() bool
	BaseURL() string
	APIKeyLength() int
}

type Deps struct {
	Checkout     CheckoutService
	Orders       OrderService
	Shipping     ShippingService
	Limiter      RateLimiter
	Integrations map[string]Integration
	AdminToken   string
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	deps     Deps
}

func NewHTTPHandler(logger *slog.Logger, deps Deps) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		deps:     deps,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Post("/checkout", h.Checkout)
	r.Get("/orders/{order_uid}", h.GetOrderByID)
	r.Post("/orders/{order_uid}/status", h.UpdateOrderStatus)
	r.Post("/orders/{order_uid}/shipment", h.UpdateShipment)
	r.Post("/shipping/quote", h.QuoteShipping)
	r.Post("/auth/password-reset", h.PasswordReset)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.With(middleware.RateLimit(h.deps.Limiter, ActionAdminCreate)).
			Post("/accounts", h.CreateAdminAccount)
		r.Get("/ratelimit/{action}/{identifier}", h.InspectRateLimit)
		r.Get("/integrations", h.Integrations)
	})
}

// Checkout prices and places an order.
// @Summary      Place an order
// @Description  Validates the cart, prices shipping, authorizes payment and creates the order in PENDING
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body  CheckoutRequest  true  "Cart"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      402  {object}  utils.ErrorResponse "Payment declined"
// @Failure      503  {object}  utils.ErrorResponse "Upstream unavailable, retry later"
// @Router       /checkout [post]
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckoutRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.deps.Checkout.Checkout(ctx, CartToEntity(req))
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrUnknownShippingMethod):
		utils.WriteError(w, "unknown shipping method", http.StatusBadRequest)
		return
	case errors.Is(err, entities.ErrShippingUnavailable):
		utils.WriteError(w, "shipping rates unavailable, try again later", http.StatusServiceUnavailable)
		return
	case errors.Is(err, entities.ErrPaymentDeclined):
		utils.WriteError(w, "payment declined", http.StatusPaymentRequired)
		return
	case errors.Is(err, entities.ErrPaymentUnavailable):
		utils.WriteError(w, "payment service unavailable, try again later", http.StatusServiceUnavailable)
		return
	case errors.Is(err, entities.ErrPaymentUnconfirmed):
		h.logger.ErrorContext(ctx, "payment authorization unconfirmed", slog.Any("error", err))
		utils.WriteError(w, "payment could not be confirmed", http.StatusBadGateway)
		return
	default:
		h.logger.ErrorContext(ctx, "checkout failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// GetOrderByID returns an order.
// @Summary      Get order by UID
// @Tags         orders
// @Produce      json
// @Param        order_uid  path  string  true  "Order UID"
// @Success      200  {object}  Order
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders/{order_uid} [get]
func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderUID := chi.URLParam(r, "order_uid")

	if err := h.validate.Var(orderUID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.deps.Orders.GetOrderByID(ctx, orderUID)
	if errors.Is(err, entities.ErrOrderNotFound) {
		utils.WriteError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get order", slog.Any("error", err), slog.String("order_uid", orderUID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// UpdateOrderStatus applies an order lifecycle transition.
// @Summary      Update order status
// @Description  Accepts one of PENDING, PROCESSING, COMPLETED, CANCELLED; any other literal is rejected
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order_uid  path  string               true  "Order UID"
// @Param        request    body  StatusUpdateRequest  true  "Target status"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Unknown status literal"
// @Failure      409  {object}  utils.ErrorResponse "Concurrent transition conflict"
// @Failure      422  {object}  utils.ErrorResponse "Invalid transition"
// @Router       /orders/{order_uid}/status [post]
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderUID := chi.URLParam(r, "order_uid")

	var req StatusUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	status, err := entities.ParseOrderStatus(req.Status)
	if err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.deps.Orders.UpdateOrderStatus(ctx, orderUID, status, req.Override)
	if h.writeTransitionError(ctx, w, err, orderUID) {
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// UpdateShipment applies a shipment transition from a carrier webhook.
// @Summary      Update shipment status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order_uid  path  string                 true  "Order UID"
// @Param        request    body  ShipmentUpdateRequest  true  "Shipment event"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      422  {object}  utils.ErrorResponse "Out-of-order event"
// @Router       /orders/{order_uid}/shipment [post]
func (h *HTTPHandler) UpdateShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderUID := chi.URLParam(r, "order_uid")

	var req ShipmentUpdateRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	status, err := entities.ParseShipmentStatus(req.Status)
	if err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.deps.Orders.UpdateShipmentStatus(ctx, orderUID, status, entities.ShipmentUpdate{
		TrackingNumber: req.TrackingNumber,
		FailureReason:  req.FailureReason,
		PickupPoint:    req.PickupPoint,
	})
	if h.writeTransitionError(ctx, w, err, orderUID) {
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// QuoteShipping returns carrier offers for a destination. Unavailability is a
// defined outcome, not a server error.
// @Summary      Quote shipping rates
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        request  body  QuoteRequest  true  "Destination and weight"
// @Success      200  {object}  QuoteResponse
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Router       /shipping/quote [post]
func (h *HTTPHandler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QuoteRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	quote := h.deps.Shipping.Quote(ctx, req.DestinationZIP, req.Country, req.WeightGrams)
	utils.WriteJSON(w, QuoteEntityToJSON(quote), http.StatusOK)
}

// PasswordReset queues a password reset email, limited per address.
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body  PasswordResetRequest  true  "Account email"
// @Success      202  {object}  utils.ErrorResponse "Accepted"
// @Failure      429  {object}  utils.ErrorResponse "Too many requests"
// @Router       /auth/password-reset [post]
func (h *HTTPHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req PasswordResetRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	if !h.deps.Limiter.Allow(ctx, ActionPasswordReset, strings.ToLower(req.Email)) {
		utils.WriteTooManyRequests(w)
		return
	}

	// The reset email itself is owned by the identity collaborator.
	h.logger.InfoContext(ctx, "password reset requested")
	utils.WriteJSON(w, map[string]string{"message": "password reset queued"}, http.StatusAccepted)
}

// CreateAdminAccount accepts an admin account provisioning request, limited
// per caller address.
// @Summary      Create admin account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body  AdminAccountRequest  true  "Account"
// @Success      202  {object}  utils.ErrorResponse "Accepted"
// @Failure      401  {object}  utils.ErrorResponse
// @Failure      429  {object}  utils.ErrorResponse "Too many requests"
// @Router       /admin/accounts [post]
func (h *HTTPHandler) CreateAdminAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AdminAccountRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "admin account creation requested", slog.String("email", req.Email))
	utils.WriteJSON(w, map[string]string{"message": "account provisioning queued"}, http.StatusAccepted)
}

// InspectRateLimit reads a counter without mutating it.
// @Summary      Inspect a rate limit counter
// @Tags         admin
// @Produce      json
// @Param        action      path  string  true  "Action namespace"
// @Param        identifier  path  string  true  "Identifier"
// @Success      200  {object}  RateLimitStatus
// @Router       /admin/ratelimit/{action}/{identifier} [get]
func (h *HTTPHandler) InspectRateLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := chi.URLParam(r, "action")
	identifier := chi.URLParam(r, "identifier")

	count, ttl, err := h.deps.Limiter.Inspect(ctx, action, identifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to inspect rate limit", slog.Any("error", err))
		utils.WriteError(w, "counter store unavailable", http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, RateLimitStatus{
		Action:     action,
		Identifier: identifier,
		Count:      count,
		TTLSeconds: int64(ttl.Seconds()),
	}, http.StatusOK)
}

// Integrations reports outbound configuration presence for operators.
// @Summary      Introspect integration configuration
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]IntegrationStatus
// @Router       /admin/integrations [get]
func (h *HTTPHandler) Integrations(w http.ResponseWriter, r *http.Request) {
	res := make(map[string]IntegrationStatus, len(h.deps.Integrations))
	for name, integration := range h.deps.Integrations {
		res[name] = IntegrationStatus{
			Configured:   integration.Configured(),
			BaseURL:      integration.BaseURL(),
			APIKeyLength: integration.APIKeyLength(),
		}
	}
	utils.WriteJSON(w, res, http.StatusOK)
}

func (h *HTTPHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.deps.AdminToken == "" || r.Header.Get("X-Admin-Token") != h.deps.AdminToken {
			utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeTransitionError translates lifecycle errors into their outward
// classification. Returns true when a response was written.
func (h *HTTPHandler) writeTransitionError(ctx context.Context, w http.ResponseWriter, err error, orderUID string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, "invalid transition", http.StatusUnprocessableEntity)
	case errors.Is(err, entities.ErrStatusConflict):
		utils.WriteError(w, "concurrent update, retry", http.StatusConflict)
	default:
		h.logger.ErrorContext(ctx, "transition failed", slog.Any("error", err), slog.String("order_uid", orderUID))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
	return true
}
