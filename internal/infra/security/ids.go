package security

import "github.com/google/uuid"

// リフレッシュトークンIDやアップロード名に使う
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
