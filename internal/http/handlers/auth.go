package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"accounthub/internal/auth"
	"accounthub/internal/config"
	"accounthub/internal/domain/user"
	"accounthub/internal/http/session"

	"github.com/gin-gonic/gin"
)

// Authenticator is the slice of the auth service the handler needs.
type Authenticator interface {
	CreateUser(ctx context.Context, name, email, password, role string) (user.User, error)
	SignIn(ctx context.Context, email, password string) (user.User, error)
}

type AuthHandler struct {
	svc Authenticator
	jwt *auth.Manager
	cfg config.Config
	log *slog.Logger
}

func NewAuthHandler(svc Authenticator, jwtManager *auth.Manager, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		jwt: jwtManager,
		cfg: cfg,
		log: log,
	}
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    Email  `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user admin"`
}

type SignInRequest struct {
	Email    Email  `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)

	defer cancel()

	u, err := h.svc.CreateUser(cctx, req.Name, string(req.Email), req.Password, req.Role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already in use.")
			return
		}

		h.log.Error("sign-up failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	if !h.issueSession(ctx, u) {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "user created",
		"user":    u,
	})
}

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.svc.SignIn(cctx, string(req.Email), req.Password)

	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.log.Error("sign-in failed", "err", err)
		RespondInternal(ctx, "Could not sign in")
		return
	}

	if !h.issueSession(ctx, u) {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "signed in",
		"user":    u,
	})
}

// SignOut only clears the cookie; the token itself is stateless and simply
// expires.
func (h *AuthHandler) SignOut(ctx *gin.Context) {
	session.ClearCookie(ctx, !h.cfg.IsDev())

	ctx.JSON(http.StatusOK, gin.H{
		"message": "signed out",
	})
}

func (h *AuthHandler) issueSession(ctx *gin.Context, u user.User) bool {
	token, err := h.jwt.SignToken(u.ID, u.Email, u.Role)

	if err != nil {
		h.log.Error("token signing failed", "err", err, "user_id", u.ID)
		RespondInternal(ctx, "Could not create session")
		return false
	}

	session.SetCookie(ctx, token, h.jwt.TTL(), !h.cfg.IsDev())

	return true
}
