package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/metrics"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
	// nil なら計測しない
	metrics *metrics.Metrics
}

func NewOrderHandler(uc *usecase.OrderUsecase, m *metrics.Metrics) *OrderHandler {
	return &OrderHandler{uc: uc, metrics: m}
}

type OrderCreateRequest struct {
	BillingAddress  *model.Address `json:"billingAddress"`
	ShippingAddress *model.Address `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
	ShippingMethod  string         `json:"shippingMethod"`
}

func (h *OrderHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/orders", guards.auth()...)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PUT("/:id/cancel", h.cancel)
	g.GET("/:id/invoice", h.invoice)
}

func (h *OrderHandler) create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req OrderCreateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.uc.CreateOrder(c.Request().Context(), userID, usecase.CreateOrderInput{
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingMethod:  req.ShippingMethod,
	})
	if err != nil {
		if h.metrics != nil {
			h.metrics.CheckoutFails.WithLabelValues(checkoutFailureReason(err)).Inc()
		}
		return err
	}
	if h.metrics != nil {
		h.metrics.OrdersPlaced.Inc()
	}

	return respondMessage(c, http.StatusCreated, "order created", o)
}

func checkoutFailureReason(err error) string {
	switch {
	case errors.Is(err, usecase.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, usecase.ErrValidation):
		return "validation"
	case errors.Is(err, usecase.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, usecase.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	page, limit, err := queryPage(c)
	if err != nil {
		return err
	}

	items, meta, err := h.uc.ListMyOrders(c.Request().Context(), userID, repo.OrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	return respondPage(c, items, meta)
}

// 他人の注文は 404
func (h *OrderHandler) detail(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.uc.GetMyOrder(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, o)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.uc.CancelOrder(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "order cancelled", o)
}

func (h *OrderHandler) invoice(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, pdf, err := h.uc.Invoice(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "invoice-"+o.OrderNumber+".pdf"))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
