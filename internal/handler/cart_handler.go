package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode"`
}

// /cart 以下を登録
func (h *CartHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/cart", guards.auth()...)

	g.GET("", h.getCart)
	g.POST("/add", h.addToCart)
	g.POST("/remove", h.removeItem)
	g.PUT("/update", h.updateItem)
	g.DELETE("/clear", h.clear)
	g.POST("/apply-coupon", h.applyCoupon)
	g.DELETE("/coupon", h.removeCoupon)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req CartItemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "item added to cart", out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req CartItemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "item removed from cart", out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req CartItemRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), userID, usecase.UpdateCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "cart updated", out)
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	out, err := h.uc.ClearCart(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "cart cleared", out)
}

func (h *CartHandler) applyCoupon(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ApplyCouponRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.ApplyCoupon(c.Request().Context(), userID, req.CouponCode)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "coupon applied", out)
}

func (h *CartHandler) removeCoupon(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	out, err := h.uc.RemoveCoupon(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "coupon removed", out)
}
