package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth のHTTP
type AuthHandler struct {
	uc *usecase.AccountUsecase
}

// DI
func NewAuthHandler(uc *usecase.AccountUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type newPasswordRequest struct {
	Password string `json:"password"`
}

type changeEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/reset", h.requestReset)
	g.POST("/reset/:token", h.resetPassword)

	//ログイン必須
	g.GET("/me", h.me, middleware.LoginRequired())
	g.GET("/confirm/:token", h.confirm, middleware.LoginRequired())
	g.POST("/confirm", h.resendConfirmation, middleware.LoginRequired())
	g.POST("/change-email", h.requestEmailChange, middleware.LoginRequired())
	g.GET("/change-email/:token", h.changeEmail, middleware.LoginRequired())
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	return c.JSON(http.StatusOK, usecase.ToUserDTO(user))
}

func (h *AuthHandler) confirm(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	//確認済みならトークンは見ない
	if user.Confirmed {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Your account is already confirmed."})
	}

	confirmed, err := h.uc.Confirm(c.Request().Context(), user, c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	if !confirmed {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "The confirmation link is invalid or has expired."})
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "You have confirmed your account. Thanks!"})
}

func (h *AuthHandler) resendConfirmation(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.ResendConfirmation(c.Request().Context(), user); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "A new confirmation email has been sent to you by email."})
}

func (h *AuthHandler) requestReset(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "An email with instructions to reset your password has been sent to you."})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req newPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ok, err := h.uc.ResetPassword(c.Request().Context(), c.Param("token"), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "The reset link is invalid or has expired."})
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Your password has been updated."})
}

func (h *AuthHandler) requestEmailChange(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req changeEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RequestEmailChange(c.Request().Context(), user, req.Email, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "An email with instructions to confirm your new email address has been sent to you."})
}

func (h *AuthHandler) changeEmail(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	changed, err := h.uc.ChangeEmail(c.Request().Context(), user, c.Param("token"))
	if err != nil {
		return writeError(c, err)
	}
	if !changed {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request."})
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Your email address has been updated."})
}
