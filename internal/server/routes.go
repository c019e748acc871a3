package server

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/handler"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Category     *handler.CategoryHandler
	Cart         *handler.CartHandler
	Wishlist     *handler.WishlistHandler
	Review       *handler.ReviewHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Admin        *handler.AdminHandler
	AdminUser    *handler.AdminUserHandler
}

func registerRoutes(e *echo.Echo, api *echo.Group, guards handler.Guards, h Handlers, ping func(ctx context.Context) error) {
	handler.NewHealthHandler(ping).RegisterRoutes(e)

	h.Auth.RegisterRoutes(api, guards)
	h.Product.RegisterRoutes(api)
	h.AdminProduct.RegisterRoutes(api, guards)
	h.Category.RegisterRoutes(api, guards)
	h.Cart.RegisterRoutes(api, guards)
	h.Wishlist.RegisterRoutes(api, guards)
	h.Review.RegisterRoutes(api, guards)
	h.Order.RegisterRoutes(api, guards)
	h.AdminOrder.RegisterRoutes(api, guards)
	h.Admin.RegisterRoutes(api, guards)
	h.AdminUser.RegisterRoutes(api, guards)
}
