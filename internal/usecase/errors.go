package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不足
	ErrValidation = errors.New("validation error")
	//401 認証失敗
	ErrUnauthorized = errors.New("unauthorized")
	//401 メールかパスワードが違う
	ErrInvalidCredentials = errors.New("invalid email or password")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//競合
	ErrConflict = errors.New("conflict")
	//500
	ErrInternal = errors.New("internal error")
)

// handlerでステータスとメッセージにそのまま変換するエラー
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// sentinelもHTTPErrorに寄せて返す
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}

	switch {
	case errors.Is(err, ErrValidation):
		return &HTTPError{Status: http.StatusBadRequest, Message: err.Error()}, true
	case errors.Is(err, ErrInvalidCredentials):
		return &HTTPError{Status: http.StatusUnauthorized, Message: ErrInvalidCredentials.Error()}, true
	case errors.Is(err, ErrUnauthorized):
		return &HTTPError{Status: http.StatusUnauthorized, Message: "unauthorized"}, true
	case errors.Is(err, ErrForbidden):
		return &HTTPError{Status: http.StatusForbidden, Message: "forbidden"}, true
	case errors.Is(err, ErrConflict):
		return &HTTPError{Status: http.StatusConflict, Message: err.Error()}, true
	}
	return nil, false
}
