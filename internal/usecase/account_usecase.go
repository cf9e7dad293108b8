package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/token"
)

// セッション用アクセストークンの有効期限
const sessionTokenTTL = 24 * time.Hour

// メールのテンプレート名
const (
	templateConfirm     = "auth/email/confirm"
	templateReset       = "auth/email/reset_password"
	templateChangeEmail = "auth/email/change_email"
)

type AccountUsecase struct {
	cfg       config.Config
	users     repo.UserRepository
	roles     repo.RoleRepository
	tx        repo.TransactionManager
	tokens    *token.Serializer
	hasher    PasswordHasher
	verifier  PasswordVerifier
	validator AccountValidator
	notifier  Notifier
	clock     Clock
	log       *slog.Logger
}

// DI
func NewAccountUsecase(
	cfg config.Config,
	users repo.UserRepository,
	roles repo.RoleRepository,
	tx repo.TransactionManager,
	tokens *token.Serializer,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator AccountValidator,
	notifier Notifier,
	clock Clock,
	log *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		cfg:       cfg,
		users:     users,
		roles:     roles,
		tx:        tx,
		tokens:    tokens,
		hasher:    hasher,
		verifier:  verifier,
		validator: validator,
		notifier:  notifier,
		clock:     clock,
		log:       log,
	}
}

// NewUser は保存前のユーザーを組み立てる。
// 管理者メールならAdministrator、それ以外はdefaultロールを割り当てる。
func (u *AccountUsecase) NewUser(ctx context.Context, email string, username string, passwordHash string) (*model.User, error) {
	now := u.clock.Now()
	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		MemberSince:  now,
		LastSeen:     now,
	}
	user.AvatarHash = user.GravatarHash()

	if u.cfg.AdminEmail != "" && email == u.cfg.AdminEmail {
		role, err := u.roles.FindByName(ctx, model.RoleNameAdministrator)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		if err == nil {
			user.RoleID = role.ID
			user.Role = &role
		}
	}

	if user.Role == nil {
		role, err := u.roles.FindDefault(ctx)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			//deploy前はロールが無い。権限なしのまま作る
			u.log.WarnContext(ctx, "default role not found", "email", email)
		case err != nil:
			return nil, err
		default:
			user.RoleID = role.ID
			user.Role = &role
		}
	}

	return user, nil
}

// 会員登録して確認メールを送る
func (u *AccountUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := u.validator.ValidateRegister(ctx, in.Email, in.Username, in.Password); err != nil {
		return UserDTO{}, err
	}

	//重複チェック（最終的にはunique制約で弾く）
	if _, err := u.users.FindByEmail(ctx, in.Email); err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, err := u.users.FindByUsername(ctx, in.Username); err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "username already in use")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user, err := u.NewUser(ctx, in.Email, in.Username, hashed)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email or username already registered")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//メール送信に失敗しても登録は成功扱い（再送できる）
	_ = u.sendConfirmation(ctx, user)

	return ToUserDTO(user), nil
}

// ログインしてセッション用のアクセストークンを返す
func (u *AccountUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	in.Email = strings.TrimSpace(in.Email)

	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return LoginOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return LoginOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return LoginOutput{}, ErrInvalidCredentials
	}

	if err := u.attachRole(ctx, user); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	access, err := u.tokens.Dumps(token.Payload{token.KeySession: user.ID}, sessionTokenTTL)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		User: ToUserDTO(user),
		Token: AccessTokenDTO{
			AccessToken: access,
			TokenType:   "Bearer",
			ExpiresIn:   int(sessionTokenTTL.Seconds()),
		},
	}, nil
}

// Authenticate はセッショントークンからユーザー（ロール付き）を引く
func (u *AccountUsecase) Authenticate(ctx context.Context, raw string) (*model.User, error) {
	payload, err := u.tokens.Loads(raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, ok := payload.Int64(token.KeySession)
	if !ok || userID <= 0 {
		return nil, ErrUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := u.attachRole(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Ping は最終アクセス時刻を更新する
func (u *AccountUsecase) Ping(ctx context.Context, user *model.User) error {
	now := u.clock.Now()
	if err := u.users.Touch(ctx, user.ID, now); err != nil {
		return err
	}
	user.LastSeen = now
	return nil
}

func (u *AccountUsecase) attachRole(ctx context.Context, user *model.User) error {
	if user.RoleID == 0 {
		user.Role = nil
		return nil
	}
	role, err := u.roles.FindByID(ctx, user.RoleID)
	if errors.Is(err, repo.ErrNotFound) {
		user.Role = nil
		return nil
	}
	if err != nil {
		return err
	}
	user.Role = &role
	return nil
}

// ========== 確認 ==========

func (u *AccountUsecase) GenerateConfirmationToken(user *model.User, expiration time.Duration) (string, error) {
	return u.tokens.Dumps(token.Payload{token.KeyConfirm: user.ID}, expiration)
}

// Confirm はトークンが本人のものなら確認済みにする。何度呼んでもよい
func (u *AccountUsecase) Confirm(ctx context.Context, user *model.User, raw string) (bool, error) {
	payload, err := u.tokens.Loads(raw)
	if err != nil {
		recordRedemption(token.KeyConfirm, "invalid")
		return false, nil
	}
	id, ok := payload.Int64(token.KeyConfirm)
	if !ok || id != user.ID {
		recordRedemption(token.KeyConfirm, "mismatch")
		return false, nil
	}

	user.Confirmed = true
	if err := u.users.Update(ctx, user); err != nil {
		return false, err
	}

	recordRedemption(token.KeyConfirm, "ok")
	return true, nil
}

// 確認メールを送り直す
func (u *AccountUsecase) ResendConfirmation(ctx context.Context, user *model.User) error {
	if user.Confirmed {
		return NewHTTPError(http.StatusBadRequest, "account already confirmed")
	}
	return u.sendConfirmation(ctx, user)
}

func (u *AccountUsecase) sendConfirmation(ctx context.Context, user *model.User) error {
	tok, err := u.GenerateConfirmationToken(user, u.cfg.TokenTTL)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return u.notify(ctx, Message{
		To:       user.Email,
		Subject:  "Confirm Your Account",
		Template: templateConfirm,
		Link:     u.link("/auth/confirm/" + tok),
	})
}

// ========== パスワードリセット ==========

func (u *AccountUsecase) GenerateResetToken(user *model.User, expiration time.Duration) (string, error) {
	return u.tokens.Dumps(token.Payload{token.KeyReset: user.ID}, expiration)
}

// リセットメールを送る。登録のないメールでも成功扱い
func (u *AccountUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := u.validator.ValidateEmail(ctx, email); err != nil {
		return err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	tok, err := u.GenerateResetToken(user, u.cfg.TokenTTL)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return u.notify(ctx, Message{
		To:       user.Email,
		Subject:  "Reset Your Password",
		Template: templateReset,
		Link:     u.link("/auth/reset/" + tok),
	})
}

// ResetPassword はトークンの指すユーザーのパスワードを変える。トークンは1回限り
func (u *AccountUsecase) ResetPassword(ctx context.Context, raw string, newPassword string) (bool, error) {
	if err := u.validator.ValidatePassword(ctx, newPassword); err != nil {
		return false, err
	}

	payload, err := u.tokens.Loads(raw)
	if err != nil {
		recordRedemption(token.KeyReset, "invalid")
		return false, nil
	}
	userID, ok := payload.Int64(token.KeyReset)
	if !ok {
		recordRedemption(token.KeyReset, "mismatch")
		return false, nil
	}

	//bcryptは重いのでトランザクションの外で
	hashed, err := u.hasher.Hash(newPassword)
	if err != nil {
		return false, err
	}

	result := "ok"
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			result = "mismatch"
			return nil
		}
		if err != nil {
			return err
		}

		first, err := r.UsedTokens().MarkUsed(ctx, u.usedToken(payload, token.KeyReset, userID))
		if err != nil {
			return err
		}
		if !first {
			result = "reused"
			return nil
		}

		user.PasswordHash = hashed
		return r.Users().Update(ctx, user)
	})
	if err != nil {
		return false, err
	}

	recordRedemption(token.KeyReset, result)
	return result == "ok", nil
}

// ========== メールアドレス変更 ==========

func (u *AccountUsecase) GenerateEmailChangeToken(user *model.User, newEmail string, expiration time.Duration) (string, error) {
	return u.tokens.Dumps(token.Payload{
		token.KeyChangeEmail: user.ID,
		token.KeyNewEmail:    newEmail,
	}, expiration)
}

// 新しいメールアドレスに確認リンクを送る
func (u *AccountUsecase) RequestEmailChange(ctx context.Context, user *model.User, newEmail string, password string) error {
	newEmail = strings.TrimSpace(newEmail)
	if err := u.validator.ValidateEmail(ctx, newEmail); err != nil {
		return err
	}

	if !u.verifier.Verify(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if _, err := u.users.FindByEmail(ctx, newEmail); err == nil {
		return NewHTTPError(http.StatusConflict, "email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	tok, err := u.GenerateEmailChangeToken(user, newEmail, u.cfg.TokenTTL)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return u.notify(ctx, Message{
		To:       newEmail,
		Subject:  "Confirm your email address",
		Template: templateChangeEmail,
		Link:     u.link("/auth/change-email/" + tok),
	})
}

// ChangeEmail はトークンが本人のもので、新アドレスがまだ使われていなければ差し替える。
// 使用中かどうかは発行時ではなくここで確認する。トークンは1回限り
func (u *AccountUsecase) ChangeEmail(ctx context.Context, user *model.User, raw string) (bool, error) {
	payload, err := u.tokens.Loads(raw)
	if err != nil {
		recordRedemption(token.KeyChangeEmail, "invalid")
		return false, nil
	}
	id, ok := payload.Int64(token.KeyChangeEmail)
	if !ok || id != user.ID {
		recordRedemption(token.KeyChangeEmail, "mismatch")
		return false, nil
	}
	newEmail, ok := payload.String(token.KeyNewEmail)
	if !ok || newEmail == "" {
		recordRedemption(token.KeyChangeEmail, "mismatch")
		return false, nil
	}

	result := "ok"
	var updated *model.User
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Users().FindByEmail(ctx, newEmail); err == nil {
			result = "conflict"
			return nil
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		current, err := r.Users().FindByID(ctx, user.ID)
		if errors.Is(err, repo.ErrNotFound) {
			result = "mismatch"
			return nil
		}
		if err != nil {
			return err
		}

		first, err := r.UsedTokens().MarkUsed(ctx, u.usedToken(payload, token.KeyChangeEmail, user.ID))
		if err != nil {
			return err
		}
		if !first {
			result = "reused"
			return nil
		}

		current.Email = newEmail
		current.AvatarHash = current.GravatarHash()
		if err := r.Users().Update(ctx, current); err != nil {
			//同時に同じアドレスへ変更された
			if errors.Is(err, repo.ErrConflict) {
				result = "conflict"
				return errRollback
			}
			return err
		}
		updated = current
		return nil
	})
	if err != nil && !errors.Is(err, errRollback) {
		return false, err
	}

	recordRedemption(token.KeyChangeEmail, result)
	if result != "ok" {
		return false, nil
	}

	user.Email = updated.Email
	user.AvatarHash = updated.AvatarHash
	return true, nil
}

// トランザクションを戻すためだけのエラー
var errRollback = errors.New("rollback")

func (u *AccountUsecase) usedToken(payload token.Payload, purpose string, userID int64) model.UsedToken {
	return model.UsedToken{
		ID:        payload.ID(),
		Purpose:   purpose,
		UserID:    userID,
		ExpiresAt: payload.ExpiresAt(),
		UsedAt:    u.clock.Now(),
	}
}

// 期限切れの使用記録を消す（deployで呼ぶ）
func (u *AccountUsecase) PruneUsedTokens(ctx context.Context) (int64, error) {
	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		n, err = r.UsedTokens().DeleteExpired(ctx, u.clock.Now())
		return err
	})
	return n, err
}

func (u *AccountUsecase) notify(ctx context.Context, msg Message) error {
	msg.Subject = strings.TrimSpace(u.cfg.MailSubjectPrefix + " " + msg.Subject)
	if err := u.notifier.Send(ctx, msg); err != nil {
		u.log.ErrorContext(ctx, "send mail failed", "to", msg.To, "template", msg.Template, "err", err)
		return NewHTTPError(http.StatusBadGateway, "failed to send mail")
	}
	return nil
}

func (u *AccountUsecase) link(path string) string {
	return fmt.Sprintf("%s%s", strings.TrimRight(u.cfg.Domain, "/"), path)
}

func recordRedemption(purpose string, result string) {
	metrics.TokenRedemptions.WithLabelValues(purpose, result).Inc()
}
