package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/token"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, name string, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

// 平文パスワードからハッシュへ、照合も。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(user *model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

type AuthOptions struct {
	RefreshTTL         time.Duration
	LockoutMaxAttempts int
	LockoutDuration    time.Duration
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	TokenVersion int    `json:"tokenVersion"`
}

type AuthResult struct {
	User   *model.User `json:"user"`
	Tokens AuthTokens  `json:"tokens"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

type ForceLogoutResult struct {
	UserID          int64 `json:"userId"`
	NewTokenVersion int   `json:"newTokenVersion"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	validator AuthValidator
	hasher    PasswordHasher
	issuer    AccessTokenIssuer
	ids       IDGenerator
	notifier  Notifier
	clock     Clock
	opts      AuthOptions
	log       *slog.Logger
}

type AuthDeps struct {
	Users     repository.UserRepository
	Tokens    repository.RefreshTokenRepository
	Validator AuthValidator
	Hasher    PasswordHasher
	Issuer    AccessTokenIssuer
	IDs       IDGenerator
	Notifier  Notifier
	Clock     Clock
	Options   AuthOptions
	Logger    *slog.Logger
}

func NewAuthUsecase(d AuthDeps) *AuthUsecase {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Options.LockoutMaxAttempts <= 0 {
		d.Options.LockoutMaxAttempts = 5
	}
	return &AuthUsecase{
		users:     d.Users,
		rtRepo:    d.Tokens,
		validator: d.Validator,
		hasher:    d.Hasher,
		issuer:    d.Issuer,
		ids:       d.IDs,
		notifier:  d.Notifier,
		clock:     d.Clock,
		opts:      d.Options,
		log:       d.Logger,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput, userAgent string) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in.Name, in.Email, in.Password); err != nil {
		return nil, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Kind: ErrInternal, Err: err}
	}

	now := u.clock.Now()
	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: pwHash,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         model.RoleCustomer,
		IsActive:     true,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflictError("email already registered")
		}
		return nil, dbError(err)
	}

	tokens, err := u.issueTokens(ctx, user, userAgent, now)
	if err != nil {
		return nil, err
	}

	u.notifier.Welcome(ctx, Recipient{Name: user.Name, Email: user.Email})
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Login はパスワード照合。失敗が続くと一定時間ロックする。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)

	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, dbError(err)
	}

	now := u.clock.Now()

	if user.IsLocked(now) {
		return nil, NewHTTPError(http.StatusLocked, "account locked, try again later")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, forbiddenError("account disabled")
	}

	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		user.LoginAttempts++
		if user.LoginAttempts >= u.opts.LockoutMaxAttempts {
			until := now.Add(u.opts.LockoutDuration)
			user.LockUntil = &until
			user.LoginAttempts = 0
			u.log.WarnContext(ctx, "account locked",
				slog.Int64("user_id", user.ID),
				slog.Time("lock_until", until),
			)
		}
		user.UpdatedAt = now
		if err := u.users.Update(ctx, user); err != nil {
			return nil, dbError(err)
		}
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, dbError(err)
	}

	tokens, err := u.issueTokens(ctx, user, in.UserAgent, now)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return nil, dbError(err)
	}

	if !user.IsActive {
		return nil, forbiddenError("account disabled")
	}
	return user, nil
}

// Refresh はリフレッシュトークンをローテーションする。
// 使用済みトークンが再度来たら漏洩とみなしてそのユーザーの全トークンを消す。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (*AuthResult, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return nil, err
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, token.Hash(refreshTokenPlain))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return nil, dbError(err)
	}

	now := u.clock.Now()

	//期限切れ
	if rt.ExpiresAt.Before(now) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return nil, NewHTTPError(http.StatusUnauthorized, "refresh token expired")
	}

	if rt.RevokedAt != nil {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	//used済みが来たら replay → 全削除
	if rt.UsedAt != nil {
		u.revokeAll(ctx, rt.UserID, "refresh token reuse")
		return nil, NewHTTPError(http.StatusUnauthorized, "security incident, please login again")
	}

	//user_agent違い（再認証扱い。全削除）
	if userAgent != "" && rt.UserAgent != "" && userAgent != rt.UserAgent {
		u.revokeAll(ctx, rt.UserID, "refresh user agent mismatch")
		return nil, NewHTTPError(http.StatusUnauthorized, "security incident, please login again")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return nil, dbError(err)
	}
	if !user.IsActive {
		return nil, forbiddenError("account disabled")
	}

	//旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID, now); err != nil {
		return nil, dbError(err)
	}

	tokens, err := u.issueTokens(ctx, user, userAgent, now)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Logout はそのリフレッシュトークンだけを失効させる。
func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) error {
	if strings.TrimSpace(refreshTokenPlain) == "" {
		return validationError("refreshToken is required")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, token.Hash(refreshTokenPlain))
	if errors.Is(err, repository.ErrNotFound) {
		return NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return dbError(err)
	}

	if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil {
		return dbError(err)
	}
	return nil
}

// ForceLogout は token_version を上げて発行済みトークンを全て無効にする。
func (u *AuthUsecase) ForceLogout(ctx context.Context, targetUserID int64) (*ForceLogoutResult, error) {
	if targetUserID <= 0 {
		return nil, validationError("invalid id")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		return nil, lookupError(err, "user not found")
	}
	if err := u.rtRepo.DeleteAllByUserID(ctx, targetUserID); err != nil {
		return nil, dbError(err)
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.users.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}

	return &ForceLogoutResult{UserID: user.ID, NewTokenVersion: user.TokenVersion}, nil
}

// access token + refresh token（DBにはhash保存）
func (u *AuthUsecase) issueTokens(ctx context.Context, user *model.User, userAgent string, now time.Time) (AuthTokens, error) {
	access, exp, err := u.issuer.Issue(user, now)
	if err != nil {
		return AuthTokens{}, &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Kind: ErrInternal, Err: err}
	}

	refreshPlain, refreshHash, err := token.NewWithHash()
	if err != nil {
		return AuthTokens{}, &HTTPError{Status: http.StatusInternalServerError, Message: "internal error", Kind: ErrInternal, Err: err}
	}

	rt := &model.RefreshToken{
		ID:        u.ids.NewID(),
		UserID:    user.ID,
		TokenHash: refreshHash,
		UserAgent: userAgent,
		ExpiresAt: now.Add(u.opts.RefreshTTL),
	}
	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return AuthTokens{}, dbError(err)
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refreshPlain,
		ExpiresIn:    int(exp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}, nil
}

func (u *AuthUsecase) revokeAll(ctx context.Context, userID int64, reason string) {
	u.log.WarnContext(ctx, "revoking all refresh tokens",
		slog.Int64("user_id", userID),
		slog.String("reason", reason),
	)
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		u.log.ErrorContext(ctx, "revoke refresh tokens failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
