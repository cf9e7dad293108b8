package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/token"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "not an HTTPError: %v", err)
	assert.Equal(t, status, he.Status)
}

func TestAccountUsecase_Register_AssignsRoles(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)

	user := e.register(t, "john@example.com", "john", "password1")
	assert.Equal(t, model.RoleNameUser, user.Role.Name)
	assert.False(t, user.IsAdministrator())
	assert.True(t, user.Can(model.PermissionUser))
	assert.False(t, user.Confirmed)
	assert.Equal(t, user.GravatarHash(), user.AvatarHash)

	admin := e.register(t, "admin@example.com", "boss", "password1")
	assert.Equal(t, model.RoleNameAdministrator, admin.Role.Name)
	assert.True(t, admin.IsAdministrator())

	e.notifier.AssertExpectations(t)
}

func TestAccountUsecase_Register_WithoutRoles(t *testing.T) {
	e := newEnv(t)

	user := e.register(t, "john@example.com", "john", "password1")
	assert.Nil(t, user.Role)
	assert.Zero(t, user.RoleID)
	assert.False(t, user.Can(model.PermissionUser))
}

func TestAccountUsecase_Register_SendsConfirmationLink(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)

	var sent usecase.Message
	e.notifier.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(usecase.Message) }).
		Return(nil).Once()

	_, err := e.accounts.Register(context.Background(), usecase.RegisterInput{
		Email: "john@example.com", Username: "john", Password: "password1",
	})
	require.NoError(t, err)

	assert.Equal(t, "john@example.com", sent.To)
	assert.Equal(t, "[BuyYourStuffHere] Confirm Your Account", sent.Subject)
	assert.Equal(t, "auth/email/confirm", sent.Template)
	require.True(t, strings.HasPrefix(sent.Link, "http://shop.test/auth/confirm/"))

	//リンクのトークンでそのまま確認できる
	user, err := e.repos.Users().FindByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	ok, err := e.accounts.Confirm(context.Background(), user, strings.TrimPrefix(sent.Link, "http://shop.test/auth/confirm/"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountUsecase_Register_Rejects(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	e.register(t, "john@example.com", "john", "password1")

	_, err := e.accounts.Register(ctx, usecase.RegisterInput{Email: "john@example.com", Username: "other", Password: "password1"})
	requireStatus(t, err, http.StatusConflict)

	_, err = e.accounts.Register(ctx, usecase.RegisterInput{Email: "other@example.com", Username: "john", Password: "password1"})
	requireStatus(t, err, http.StatusConflict)

	_, err = e.accounts.Register(ctx, usecase.RegisterInput{Email: "bad", Username: "x", Password: "password1"})
	assert.ErrorIs(t, err, usecase.ErrValidation)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestAccountUsecase_Login(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	e.register(t, "john@example.com", "john", "password1")

	out, err := e.accounts.Login(ctx, usecase.LoginInput{Email: "john@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "john", out.User.Username)
	assert.Equal(t, model.RoleNameUser, out.User.Role)
	assert.Equal(t, "Bearer", out.Token.TokenType)
	assert.Equal(t, 86400, out.Token.ExpiresIn)

	_, err = e.accounts.Login(ctx, usecase.LoginInput{Email: "john@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	_, err = e.accounts.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
}

func TestAccountUsecase_Authenticate(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	user := e.register(t, "john@example.com", "john", "password1")

	//確認用トークンはセッションに使えない
	confirm, err := e.accounts.GenerateConfirmationToken(user, 0)
	require.NoError(t, err)
	_, err = e.accounts.Authenticate(ctx, confirm)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	_, err = e.accounts.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	ghost, err := e.tokens.Dumps(token.Payload{token.KeySession: int64(999)}, time.Hour)
	require.NoError(t, err)
	_, err = e.accounts.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)
}

func TestAccountUsecase_Ping(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	user := e.register(t, "john@example.com", "john", "password1")

	e.clock.now = e.clock.now.Add(2 * time.Hour)
	require.NoError(t, e.accounts.Ping(ctx, user))
	assert.True(t, e.clock.now.Equal(user.LastSeen))

	stored, err := e.repos.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, e.clock.now, stored.LastSeen, time.Second)
}

func TestAccountUsecase_Confirm(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")
	jane := e.register(t, "jane@example.com", "jane", "password1")

	tok, err := e.accounts.GenerateConfirmationToken(john, 0)
	require.NoError(t, err)

	//他人のトークン
	ok, err := e.accounts.Confirm(ctx, jane, tok)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, jane.Confirmed)

	ok, err = e.accounts.Confirm(ctx, john, tok)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := e.repos.Users().FindByID(ctx, john.ID)
	require.NoError(t, err)
	assert.True(t, stored.Confirmed)

	//確認は何度でも通る
	ok, err = e.accounts.Confirm(ctx, john, tok)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.accounts.Confirm(ctx, john, "garbage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountUsecase_Confirm_Expired(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	john := e.register(t, "john@example.com", "john", "password1")

	issued := time.Now().Add(-2 * time.Hour)
	tok, err := e.tokens.WithClock(func() time.Time { return issued }).
		Dumps(token.Payload{token.KeyConfirm: john.ID}, time.Hour)
	require.NoError(t, err)

	ok, err := e.accounts.Confirm(context.Background(), john, tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountUsecase_ResendConfirmation(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")

	e.notifier.On("Send", mock.Anything, mock.MatchedBy(func(m usecase.Message) bool {
		return m.Template == "auth/email/confirm"
	})).Return(nil).Once()
	require.NoError(t, e.accounts.ResendConfirmation(ctx, john))

	john.Confirmed = true
	requireStatus(t, e.accounts.ResendConfirmation(ctx, john), http.StatusBadRequest)

	e.notifier.AssertExpectations(t)
}

func TestAccountUsecase_ResetPassword(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")

	tok, err := e.accounts.GenerateResetToken(john, 0)
	require.NoError(t, err)

	ok, err := e.accounts.ResetPassword(ctx, tok, "new-password")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = e.accounts.Login(ctx, usecase.LoginInput{Email: "john@example.com", Password: "new-password"})
	assert.NoError(t, err)
	_, err = e.accounts.Login(ctx, usecase.LoginInput{Email: "john@example.com", Password: "password1"})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	//同じトークンは2回使えない
	ok, err = e.accounts.ResetPassword(ctx, tok, "third-password")
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = e.accounts.Login(ctx, usecase.LoginInput{Email: "john@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestAccountUsecase_ResetPassword_Failures(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()

	ghost, err := e.tokens.Dumps(token.Payload{token.KeyReset: int64(999)}, 0)
	require.NoError(t, err)
	ok, err := e.accounts.ResetPassword(ctx, ghost, "new-password")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.accounts.ResetPassword(ctx, "garbage", "new-password")
	require.NoError(t, err)
	assert.False(t, ok)

	//確認用トークンでリセットはできない
	john := e.register(t, "john@example.com", "john", "password1")
	confirm, err := e.accounts.GenerateConfirmationToken(john, 0)
	require.NoError(t, err)
	ok, err = e.accounts.ResetPassword(ctx, confirm, "new-password")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.accounts.ResetPassword(ctx, confirm, "short")
	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestAccountUsecase_RequestPasswordReset(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	e.register(t, "john@example.com", "john", "password1")

	var sent usecase.Message
	e.notifier.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(usecase.Message) }).
		Return(nil).Once()

	require.NoError(t, e.accounts.RequestPasswordReset(ctx, "john@example.com"))
	assert.Equal(t, "auth/email/reset_password", sent.Template)
	tok := strings.TrimPrefix(sent.Link, "http://shop.test/auth/reset/")

	ok, err := e.accounts.ResetPassword(ctx, tok, "new-password")
	require.NoError(t, err)
	assert.True(t, ok)

	//登録のないメールでも成功扱い（送信はしない）
	require.NoError(t, e.accounts.RequestPasswordReset(ctx, "nobody@example.com"))
	e.notifier.AssertExpectations(t)
}

func TestAccountUsecase_ChangeEmail(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")
	oldHash := john.AvatarHash

	tok, err := e.accounts.GenerateEmailChangeToken(john, "john.doe@example.com", 0)
	require.NoError(t, err)

	ok, err := e.accounts.ChangeEmail(ctx, john, tok)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "john.doe@example.com", john.Email)
	assert.Equal(t, "8eb1b522f60d11fa897de1dc6351b7e8", john.AvatarHash)
	assert.NotEqual(t, oldHash, john.AvatarHash)

	stored, err := e.repos.Users().FindByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", stored.Email)
	assert.Equal(t, john.AvatarHash, stored.AvatarHash)

	//再利用は失敗
	ok, err = e.accounts.ChangeEmail(ctx, john, tok)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountUsecase_ChangeEmail_Failures(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")
	jane := e.register(t, "jane@example.com", "jane", "password1")

	//他人のトークン
	tok, err := e.accounts.GenerateEmailChangeToken(john, "new@example.com", 0)
	require.NoError(t, err)
	ok, err := e.accounts.ChangeEmail(ctx, jane, tok)
	require.NoError(t, err)
	assert.False(t, ok)

	//new_emailが無い
	noEmail, err := e.tokens.Dumps(token.Payload{token.KeyChangeEmail: john.ID}, 0)
	require.NoError(t, err)
	ok, err = e.accounts.ChangeEmail(ctx, john, noEmail)
	require.NoError(t, err)
	assert.False(t, ok)

	//発行後に他の人がそのアドレスを使い始めた
	race, err := e.accounts.GenerateEmailChangeToken(john, "shared@example.com", 0)
	require.NoError(t, err)
	tok2, err := e.accounts.GenerateEmailChangeToken(jane, "shared@example.com", 0)
	require.NoError(t, err)

	ok, err = e.accounts.ChangeEmail(ctx, jane, tok2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.accounts.ChangeEmail(ctx, john, race)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "john@example.com", john.Email)

	//失敗したトークンは消費されていないので、状況が変われば使える
	jane2, err := e.accounts.GenerateEmailChangeToken(jane, "jane2@example.com", 0)
	require.NoError(t, err)
	ok, err = e.accounts.ChangeEmail(ctx, jane, jane2)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.accounts.ChangeEmail(ctx, john, race)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountUsecase_RequestEmailChange(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")
	e.register(t, "jane@example.com", "jane", "password1")

	err := e.accounts.RequestEmailChange(ctx, john, "new@example.com", "wrong-password")
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	err = e.accounts.RequestEmailChange(ctx, john, "jane@example.com", "password1")
	requireStatus(t, err, http.StatusConflict)

	err = e.accounts.RequestEmailChange(ctx, john, "not-an-email", "password1")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	var sent usecase.Message
	e.notifier.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(usecase.Message) }).
		Return(nil).Once()
	require.NoError(t, e.accounts.RequestEmailChange(ctx, john, "new@example.com", "password1"))
	assert.Equal(t, "new@example.com", sent.To)
	assert.Equal(t, "auth/email/change_email", sent.Template)

	ok, err := e.accounts.ChangeEmail(ctx, john, strings.TrimPrefix(sent.Link, "http://shop.test/auth/change-email/"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAccountUsecase_NotifierFailure(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")

	e.notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	err := e.accounts.RequestPasswordReset(ctx, john.Email)
	requireStatus(t, err, http.StatusBadGateway)
}

func TestAccountUsecase_PruneUsedTokens(t *testing.T) {
	e := newEnv(t)
	e.seedRoles(t)
	ctx := context.Background()
	john := e.register(t, "john@example.com", "john", "password1")

	tok, err := e.accounts.GenerateResetToken(john, time.Minute)
	require.NoError(t, err)
	ok, err := e.accounts.ResetPassword(ctx, tok, "new-password")
	require.NoError(t, err)
	require.True(t, ok)

	n, err := e.accounts.PruneUsedTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	e.clock.now = e.clock.now.Add(2 * time.Minute)
	n, err = e.accounts.PruneUsedTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
