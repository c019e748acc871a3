// Package security はパスワードハッシュとアクセストークン発行の実装を持つ。
package security

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

// HS256 のアクセストークンを発行する。
// claims: sub(user id) / role / tv(token_version) / iat / exp
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *JWTIssuer) Issue(user *model.User, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"tv":   user.TokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
