package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// エラー種別。errors.Is で判定できる。
var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限・所有者違い
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 重複
	ErrConflict = errors.New("conflict")
	//423 アカウントロック中
	ErrAccountLocked = errors.New("account locked")
	//400 在庫不足
	ErrInsufficientStock = errors.New("insufficient stock")
	//404 カートに無い商品
	ErrItemNotInCart = errors.New("item not in cart")
	//400 今の状態では実行できない
	ErrInvalidState = errors.New("invalid state")
	//500
	ErrInternal = errors.New("internal error")
)

// HTTPError は handler がそのままレスポンスにできるエラー。
// Err には元のDBエラーなどを保持する（503判定・ログ用）。
type HTTPError struct {
	Status  int
	Message string
	Kind    error
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Kind:    kindForStatus(status),
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusLocked:
		return ErrAccountLocked
	default:
		return ErrInternal
	}
}

func validationError(message string) error {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Kind: ErrValidation}
}

func notFoundError(message string) error {
	return &HTTPError{Status: http.StatusNotFound, Message: message, Kind: ErrNotFound}
}

func conflictError(message string) error {
	return &HTTPError{Status: http.StatusConflict, Message: message, Kind: ErrConflict}
}

func forbiddenError(message string) error {
	return &HTTPError{Status: http.StatusForbidden, Message: message, Kind: ErrForbidden}
}

func insufficientStockError(message string) error {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Kind: ErrInsufficientStock}
}

func invalidStateError(message string) error {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Kind: ErrInvalidState}
}

// dbError は元エラーを包んで 500 にする（接続断なら handler 側で 503 になる）。
func dbError(err error) error {
	return &HTTPError{Status: http.StatusInternalServerError, Message: "db error", Kind: ErrInternal, Err: err}
}

// lookupError は repo.ErrNotFound を 404 に、それ以外を dbError にする。
func lookupError(err error, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFoundError(message)
	}
	return dbError(err)
}
