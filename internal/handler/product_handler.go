package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// /products の公開API
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products", h.list)
	api.GET("/products/:idOrSlug", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, err := parseListProducts(c)
	if err != nil {
		return err
	}

	items, meta, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return respondPage(c, items, meta)
}

// id でも slug でも引ける
func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("idOrSlug"))
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, p)
}

// 一覧のクエリ。公開と管理画面で共通
func parseListProducts(c echo.Context) (usecase.ListProductsInput, error) {
	page, limit, err := queryPage(c)
	if err != nil {
		return usecase.ListProductsInput{}, err
	}

	categoryID, err := queryInt64Ptr(c, "category")
	if err != nil {
		return usecase.ListProductsInput{}, err
	}

	minPrice, err := queryDecimalPtr(c, "min_price")
	if err != nil {
		return usecase.ListProductsInput{}, err
	}

	maxPrice, err := queryDecimalPtr(c, "max_price")
	if err != nil {
		return usecase.ListProductsInput{}, err
	}

	return usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Sort:       c.QueryParam("sort"),
	}, nil
}

func queryDecimalPtr(c echo.Context, name string) (*decimal.Decimal, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &d, nil
}
