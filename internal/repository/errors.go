package repository

import "errors"

var (
	// 対象が存在しない
	ErrNotFound = errors.New("not found")
	// unique 制約違反
	ErrDuplicate = errors.New("duplicate")
)
