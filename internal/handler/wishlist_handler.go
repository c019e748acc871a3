package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type WishlistRequest struct {
	ProductID int64 `json:"productId"`
}

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) *WishlistHandler {
	return &WishlistHandler{uc: uc}
}

func (h *WishlistHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/wishlist", guards.auth()...)

	g.GET("", h.get)
	g.POST("/add", h.add)
	g.POST("/remove", h.remove)
	g.DELETE("/clear", h.clear)
	g.POST("/move-to-cart", h.moveToCart)
}

func (h *WishlistHandler) get(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	w, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, w)
}

func (h *WishlistHandler) add(c echo.Context) error {
	userID, productID, err := h.bindProduct(c)
	if err != nil {
		return err
	}

	w, err := h.uc.Add(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "added to wishlist", w)
}

func (h *WishlistHandler) remove(c echo.Context) error {
	userID, productID, err := h.bindProduct(c)
	if err != nil {
		return err
	}

	w, err := h.uc.Remove(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "removed from wishlist", w)
}

func (h *WishlistHandler) clear(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	w, err := h.uc.Clear(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "wishlist cleared", w)
}

// 成功時はカートを返す
func (h *WishlistHandler) moveToCart(c echo.Context) error {
	userID, productID, err := h.bindProduct(c)
	if err != nil {
		return err
	}

	cart, err := h.uc.MoveToCart(c.Request().Context(), userID, productID)
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "moved to cart", cart)
}

func (h *WishlistHandler) bindProduct(c echo.Context) (int64, int64, error) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return 0, 0, err
	}

	var req WishlistRequest
	if err := bindBody(c, &req); err != nil {
		return 0, 0, err
	}
	return userID, req.ProductID, nil
}
