package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"accounthub/internal/domain/user"
	"accounthub/internal/http/middlewares"

	"github.com/gin-gonic/gin"
)

// UserDirectory is the slice of the users service the handler needs.
type UserDirectory interface {
	List(ctx context.Context) ([]user.User, error)
	Get(ctx context.Context, id int64) (user.User, error)
	Update(ctx context.Context, id int64, req user.UpdateRequest) (user.User, error)
	Delete(ctx context.Context, id int64) error
}

type UsersHandler struct {
	svc UserDirectory
	log *slog.Logger
}

func NewUsersHandler(svc UserDirectory, log *slog.Logger) *UsersHandler {
	return &UsersHandler{svc: svc, log: log}
}

type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitnil,min=2,max=255"`
	Email *Email  `json:"email" binding:"omitnil,email,max=255"`
	Role  *string `json:"role" binding:"omitnil,oneof=user admin"`
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.svc.List(cctx)

	if err != nil {
		h.log.Error("list users failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.svc.Get(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("get user failed", "err", err, "target_id", id)
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": u,
	})
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Name == nil && req.Email == nil && req.Role == nil {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"fields": []FieldError{
				{Field: "name", Rule: "required_without_all", Message: "at least one of name, email, role is required"},
			},
		})
		return
	}

	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	// role escalation is an admin-only move, even on yourself
	if req.Role != nil && !actor.IsAdmin() {
		h.log.Warn("role change denied", "actor_id", actor.ID, "target_id", id)
		RespondForbidden(ctx, "Only administrators can change roles")
		return
	}

	if actor.ID != id && !actor.IsAdmin() {
		h.log.Warn("update denied", "actor_id", actor.ID, "target_id", id)
		RespondForbidden(ctx, "You can only update your own account")
		return
	}

	var email *string
	if req.Email != nil {
		s := string(*req.Email)
		email = &s
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.Update(cctx, id, user.UpdateRequest{
		Name:  req.Name,
		Email: email,
		Role:  req.Role,
	})

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email is already in use.")
		default:
			h.log.Error("update user failed", "err", err, "actor_id", actor.ID, "target_id", id)
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "user updated",
		"user":    u,
	})
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	if actor.ID != id && !actor.IsAdmin() {
		h.log.Warn("delete denied", "actor_id", actor.ID, "target_id", id)
		RespondForbidden(ctx, "You can only delete your own account")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.log.Error("delete user failed", "err", err, "actor_id", actor.ID, "target_id", id)
		RespondInternal(ctx, "Could not delete user")
		return
	}

	h.log.Info("user deleted", "actor_id", actor.ID, "target_id", id)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "user deleted",
		"userId":  id,
	})
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid user id", gin.H{
			"fields": []FieldError{
				{Field: "id", Rule: "numeric", Message: "must be a positive integer"},
			},
		})
		return 0, false
	}

	return id, true
}

func requireActor(ctx *gin.Context) (middlewares.Actor, bool) {
	actor, ok := middlewares.ActorFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthenticated", "Missing identity context")
		return middlewares.Actor{}, false
	}

	return actor, true
}
