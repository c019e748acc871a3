package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// /auth のHTTP。refresh token は JSON ボディでやり取りする。
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DIコンストラクタ
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, guards Guards) {
	g := api.Group("/auth")
	if guards.AuthRateLimit != nil {
		g.Use(guards.AuthRateLimit)
	}

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, guards.auth()...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	}, c.Request().UserAgent())
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusCreated, "registered", out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "logged in", out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "refreshToken is required")
	}

	out, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken, c.Request().UserAgent())
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	var req refreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	u, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, u)
}
