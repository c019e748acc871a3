package validator

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// パスワード最低文字数
const minPasswordLen = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}
	if len(name) > 120 {
		return usecase.NewHTTPError(http.StatusBadRequest, "name is too long")
	}
	if !IsEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(password) < minPasswordLen {
		return usecase.NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	// email重複チェック（最終的にはDBの unique 制約で弾く）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return usecase.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "db error", Kind: usecase.ErrInternal, Err: err}
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}
	if !IsEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "refreshToken is required")
	}
	return nil
}

// 簡易メール形式をチェック
func IsEmailLike(s string) bool {
	return emailPattern.MatchString(s)
}
