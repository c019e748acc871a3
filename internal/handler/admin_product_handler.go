package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// 価格は文字列でも数値でも受け付ける
type ProductCreateRequest struct {
	CategoryID     int64           `json:"categoryId"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Brand          string          `json:"brand"`
	Size           string          `json:"size"`
	Condition      string          `json:"condition"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compareAtPrice"`
	Stock          *int64          `json:"stock"`
	Status         string          `json:"status"`
}

// 指定したフィールドだけ更新
type ProductUpdateRequest struct {
	CategoryID     *int64           `json:"categoryId"`
	Name           *string          `json:"name"`
	Slug           *string          `json:"slug"`
	Brand          *string          `json:"brand"`
	Size           *string          `json:"size"`
	Condition      *string          `json:"condition"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Status         *string          `json:"status"`
}

type InventoryUpdateRequest struct {
	Stock *int64 `json:"stock"`
}

// /admin/products をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	admin := api.Group("/admin/products", guards.auth(guards.Admin)...)

	admin.GET("", h.list)
	admin.POST("", h.createProduct)
	admin.PUT("/:id", h.updateProduct)
	admin.DELETE("/:id", h.deleteProduct)
	admin.PUT("/:id/stock", h.updateInventory)
	admin.POST("/:id/image", h.uploadImage)
}

// 管理画面は status で絞れる（空なら全件）
func (h *AdminProductHandler) list(c echo.Context) error {
	in, err := parseListProducts(c)
	if err != nil {
		return err
	}
	in.Status = c.QueryParam("status")

	items, meta, err := h.uc.AdminListProducts(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return respondPage(c, items, meta)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req ProductCreateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, usecase.AdminCreateProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Brand:          req.Brand,
		Size:           req.Size,
		Condition:      req.Condition,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Stock:          req.Stock,
		Status:         req.Status,
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusCreated, "created", p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req ProductUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, usecase.AdminUpdateProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Slug:           req.Slug,
		Brand:          req.Brand,
		Size:           req.Size,
		Condition:      req.Condition,
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Status:         req.Status,
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "updated", p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "deleted", nil)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req InventoryUpdateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Stock == nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "stock is required")
	}

	p, err := h.uc.AdminUpdateInventory(c.Request().Context(), adminID, productID, *req.Stock)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "stock updated", p)
}

// multipart の image フィールド
func (h *AdminProductHandler) uploadImage(c echo.Context) error {
	adminID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "image is required")
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid image")
	}
	defer f.Close()

	p, err := h.uc.AdminUploadImage(c.Request().Context(), adminID, productID, usecase.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "image uploaded", p)
}
