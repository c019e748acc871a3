package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// NewWithHash はURLセーフな平文トークンと、DB保存用の SHA-256 ハッシュを返す。
func NewWithHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, Hash(plain), nil
}

func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
