package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type ReviewCreateRequest struct {
	// 無ければストアレビュー
	ProductID *int64 `json:"productId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

type ReviewModerateRequest struct {
	Status     *string `json:"status"`
	IsFeatured *bool   `json:"isFeatured"`
}

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

func (h *ReviewHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	api.GET("/reviews/product/:productId", h.listForProduct)
	api.GET("/reviews/featured", h.featured)
	api.POST("/reviews", h.create, guards.auth()...)

	admin := api.Group("/admin/reviews", guards.auth(guards.Admin)...)
	admin.GET("", h.adminList)
	admin.PUT("/:id", h.moderate)
	admin.DELETE("/:id", h.delete)
}

func (h *ReviewHandler) listForProduct(c echo.Context) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}
	page, limit, err := queryPage(c)
	if err != nil {
		return err
	}

	items, meta, err := h.uc.ListForProduct(c.Request().Context(), productID, page, limit)
	if err != nil {
		return err
	}
	return respondPage(c, items, meta)
}

func (h *ReviewHandler) featured(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	items, err := h.uc.ListFeatured(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, items)
}

func (h *ReviewHandler) create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ReviewCreateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	r, err := h.uc.Create(c.Request().Context(), userID, usecase.CreateReviewInput(req))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusCreated, "review created", r)
}

func (h *ReviewHandler) adminList(c echo.Context) error {
	page, limit, err := queryPage(c)
	if err != nil {
		return err
	}
	productID, err := queryInt64Ptr(c, "product_id")
	if err != nil {
		return err
	}

	items, meta, err := h.uc.AdminList(c.Request().Context(), repo.ReviewListFilter{
		Page:      page,
		Limit:     limit,
		ProductID: productID,
		Status:    c.QueryParam("status"),
	})
	if err != nil {
		return err
	}
	return respondPage(c, items, meta)
}

func (h *ReviewHandler) moderate(c echo.Context) error {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req ReviewModerateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	r, err := h.uc.Moderate(c.Request().Context(), actorID, id, usecase.ModerateReviewInput(req))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "review updated", r)
}

func (h *ReviewHandler) delete(c echo.Context) error {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Request().Context(), actorID, id); err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "review deleted", nil)
}
