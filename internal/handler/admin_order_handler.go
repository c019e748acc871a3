package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type OrderTrackingUpdateRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	TrackingURL    string `json:"trackingUrl"`
}

type OrderPaymentUpdateRequest struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

func (h *AdminOrderHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	// ステータス変更は /orders 配下だが admin 以上
	api.PUT("/orders/:id/status", h.updateStatus, guards.auth(guards.Admin)...)

	admin := api.Group("/admin/orders", guards.auth(guards.Admin)...)
	admin.GET("", h.list)
	admin.GET("/:id", h.detail)
	admin.PUT("/:id/status", h.updateStatus)
	admin.PUT("/:id/tracking", h.updateTracking)
	admin.PUT("/:id/payment", h.updatePayment)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, err := queryPage(c)
	if err != nil {
		return err
	}

	userID, err := queryInt64Ptr(c, "user_id")
	if err != nil {
		return err
	}

	from, err := queryTimePtr(c, "from")
	if err != nil {
		return err
	}

	to, err := queryEndPtr(c, "to")
	if err != nil {
		return err
	}

	items, meta, err := h.uc.List(c.Request().Context(), repo.AdminOrderListFilter{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return err
	}

	return respondPage(c, items, meta)
}

func (h *AdminOrderHandler) detail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, o)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	// 操作した管理者IDを取得（監査ログ用）
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req OrderStatusUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput(req))
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "order status updated", o)
}

func (h *AdminOrderHandler) updateTracking(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req OrderTrackingUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.uc.UpdateTracking(c.Request().Context(), adminID, orderID, usecase.AdminUpdateTrackingInput(req))
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "tracking updated", o)
}

func (h *AdminOrderHandler) updatePayment(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	orderID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req OrderPaymentUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	o, err := h.uc.UpdatePayment(c.Request().Context(), adminID, orderID, usecase.AdminUpdatePaymentInput(req))
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "payment updated", o)
}
