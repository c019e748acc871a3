package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// ダッシュボード・財務レポート・エクスポート・設定
type AdminHandler struct {
	uc *usecase.AdminUsecase
}

func NewAdminHandler(uc *usecase.AdminUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

func (h *AdminHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	api.GET("/admin/dashboard", h.dashboard, guards.auth(guards.Admin)...)

	super := guards.auth(guards.SuperAdmin)
	api.GET("/admin/super/financial-report", h.financialReport, super...)
	api.GET("/admin/super/settings", h.settings, super...)
	api.GET("/admin/export/:kind", h.export, super...)
}

func (h *AdminHandler) dashboard(c echo.Context) error {
	d, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, d)
}

// startDate / endDate は YYYY-MM-DD。省略時は直近30日
func (h *AdminHandler) financialReport(c echo.Context) error {
	r, err := h.uc.FinancialReport(c.Request().Context(), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, r)
}

func (h *AdminHandler) settings(c echo.Context) error {
	return respond(c, http.StatusOK, h.uc.Settings())
}

func (h *AdminHandler) export(c echo.Context) error {
	f, err := h.uc.Export(c.Request().Context(), c.Param("kind"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Filename))
	return c.Blob(http.StatusOK, f.ContentType, f.Body)
}
