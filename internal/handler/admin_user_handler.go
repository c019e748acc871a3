package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/middleware"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type AdminUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// ユーザー管理・強制ログアウト・監査ログ
type AdminUserHandler struct {
	admin *usecase.AdminUsecase
	auth  *usecase.AuthUsecase
}

func NewAdminUserHandler(admin *usecase.AdminUsecase, auth *usecase.AuthUsecase) *AdminUserHandler {
	return &AdminUserHandler{admin: admin, auth: auth}
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	// /admin 配下は全部「JWT必須 + token_version一致 + admin 以上」
	admin := api.Group("/admin", guards.auth(guards.Admin)...)

	admin.GET("/users", h.list)
	admin.GET("/users/:id", h.detail)
	admin.PUT("/users/:id", h.update)
	admin.POST("/users/:id/force-logout", h.forceLogout)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, limit, err := queryPage(c)
	if err != nil {
		return err
	}

	items, meta, err := h.admin.ListUsers(c.Request().Context(), repo.UserListFilter{
		Page:  page,
		Limit: limit,
		Role:  c.QueryParam("role"),
		Q:     c.QueryParam("q"),
	})
	if err != nil {
		return err
	}

	return respondPage(c, items, meta)
}

func (h *AdminUserHandler) detail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	u, err := h.admin.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, u)
}

// role の変更は super-admin のみ（usecase 側で判定）
func (h *AdminUserHandler) update(c echo.Context) error {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req AdminUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	u, err := h.admin.UpdateUser(c.Request().Context(), actorID, middleware.Role(c), id, usecase.AdminUpdateUserInput(req))
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "user updated", u)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.auth.ForceLogout(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, res)
}

func (h *AdminUserHandler) auditLogs(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	f := repo.AuditLogFilter{Limit: limit, Offset: offset}
	if f.ActorUserID, err = queryInt64Ptr(c, "actor_user_id"); err != nil {
		return err
	}
	if f.ResourceID, err = queryInt64Ptr(c, "resource_id"); err != nil {
		return err
	}
	if f.CreatedFrom, err = queryTimePtr(c, "from"); err != nil {
		return err
	}
	if f.CreatedTo, err = queryEndPtr(c, "to"); err != nil {
		return err
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}

	logs, err := h.admin.ListAuditLogs(c.Request().Context(), f)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, logs)
}
