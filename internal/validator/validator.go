package validator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// 先頭は英字、以降は英数字・ドット・アンダースコア
var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

type registerInput struct {
	Email    string `validate:"required,max=64,email"`
	Username string `validate:"required,max=64,username"`
	Password string `validate:"required,min=8,max=128"`
}

type loginInput struct {
	Email    string `validate:"required,max=64,email"`
	Password string `validate:"required"`
}

type Validator struct {
	v *validator.Validate
}

// Usecaseは interface を依存注入
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// サインアップの入力を検証
func (x *Validator) ValidateRegister(ctx context.Context, email string, username string, password string) error {
	return x.check(registerInput{Email: email, Username: username, Password: password})
}

// ログインの入力を検証
func (x *Validator) ValidateLogin(ctx context.Context, email string, password string) error {
	return x.check(loginInput{Email: email, Password: password})
}

func (x *Validator) ValidateEmail(ctx context.Context, email string) error {
	return x.wrap(x.v.Var(email, "required,max=64,email"), "email")
}

func (x *Validator) ValidatePassword(ctx context.Context, password string) error {
	return x.wrap(x.v.Var(password, "required,min=8,max=128"), "password")
}

// 配送先（全項目必須）
func (x *Validator) ValidateAddress(ctx context.Context, addr model.ShippingAddress) error {
	return x.check(addr)
}

func (x *Validator) check(s interface{}) error {
	return x.wrap(x.v.Struct(s), "")
}

// usecase.ErrValidationで包んで返す（handlerで400）
func (x *Validator) wrap(err error, field string) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %v", usecase.ErrValidation, err)
	}

	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		name := strings.ToLower(fe.Field())
		if field != "" {
			name = field
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", name, describe(fe)))
	}
	return fmt.Errorf("%w: %s", usecase.ErrValidation, strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		return "must start with a letter and contain only letters, numbers, dots or underscores"
	default:
		return "is invalid"
	}
}

var (
	_ usecase.AccountValidator  = (*Validator)(nil)
	_ usecase.CheckoutValidator = (*Validator)(nil)
)
