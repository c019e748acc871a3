package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type CategoryHandler struct {
	uc *usecase.CategoryUsecase
}

func NewCategoryHandler(uc *usecase.CategoryUsecase) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	api.GET("/categories", h.listActive)

	admin := api.Group("/admin/categories", guards.auth(guards.Admin)...)
	admin.GET("", h.listAll)
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
}

func (h *CategoryHandler) listActive(c echo.Context) error {
	cs, err := h.uc.List(c.Request().Context(), true)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cs)
}

func (h *CategoryHandler) listAll(c echo.Context) error {
	cs, err := h.uc.List(c.Request().Context(), false)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cs)
}

func (h *CategoryHandler) create(c echo.Context) error {
	var req CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cat, err := h.uc.Create(c.Request().Context(), usecase.CategoryInput(req))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusCreated, "created", cat)
}

func (h *CategoryHandler) update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req CategoryRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	cat, err := h.uc.Update(c.Request().Context(), id, usecase.CategoryInput(req))
	if err != nil {
		return err
	}
	return respondMessage(c, http.StatusOK, "updated", cat)
}
