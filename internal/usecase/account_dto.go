package usecase

import (
	"time"

	"storefront/internal/domain/model"
)

type UserDTO struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Confirmed   bool      `json:"confirmed"`
	Name        string    `json:"name,omitempty"`
	Location    string    `json:"location,omitempty"`
	AboutMe     string    `json:"about_me,omitempty"`
	Avatar      string    `json:"avatar"`
	MemberSince time.Time `json:"member_since"`
	LastSeen    time.Time `json:"last_seen"`
}

type AccessTokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	User  UserDTO        `json:"user"`
	Token AccessTokenDTO `json:"token"`
}

// パスワードは返さない
func ToUserDTO(u *model.User) UserDTO {
	role := ""
	if u.Role != nil {
		role = u.Role.Name
	}
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        role,
		Confirmed:   u.Confirmed,
		Name:        u.Name,
		Location:    u.Location,
		AboutMe:     u.AboutMe,
		Avatar:      u.Gravatar(100, "identicon", "g"),
		MemberSince: u.MemberSince,
		LastSeen:    u.LastSeen,
	}
}
