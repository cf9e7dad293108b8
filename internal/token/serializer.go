// Package token は確認・パスワードリセット・メール変更に使う署名付きトークンを扱う。
//
// 中身はHS256のJWTで、payloadのキーに加えて iat / exp / jti が入る。
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// payloadのキー
const (
	KeyConfirm     = "confirm"
	KeyReset       = "reset"
	KeyChangeEmail = "change_email"
	KeyNewEmail    = "new_email"
	KeySession     = "sub"
)

// 有効期限の既定値（秒数で3600）
const DefaultExpiration = 3600 * time.Second

// 形式・署名・アルゴリズム・期限切れのどれで失敗しても同じエラーを返す
var ErrInvalidToken = errors.New("invalid token")

type Payload map[string]interface{}

type Serializer struct {
	secret []byte
	now    func() time.Time
}

func NewSerializer(secret string) *Serializer {
	return &Serializer{secret: []byte(secret), now: time.Now}
}

// テストで時刻を差し替える
func (s *Serializer) WithClock(now func() time.Time) *Serializer {
	return &Serializer{secret: s.secret, now: now}
}

// Dumps はpayloadに署名してトークン文字列を返す。expirationが0以下なら既定値。
func (s *Serializer) Dumps(payload Payload, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	now := s.now()

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(expiration).Unix()
	claims["jti"] = uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Loads は署名と期限を検証してpayloadを返す
func (s *Serializer) Loads(raw string) (Payload, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.Parse(raw,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return Payload(claims), nil
}

// 数値のキーをint64で取り出す（JSONの数値はfloat64で戻ってくる）
func (p Payload) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func (p Payload) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// jti
func (p Payload) ID() string {
	s, _ := p.String("jti")
	return s
}

func (p Payload) ExpiresAt() time.Time {
	exp, ok := p.Int64("exp")
	if !ok {
		return time.Time{}
	}
	return time.Unix(exp, 0)
}
