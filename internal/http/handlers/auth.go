package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cartelera/billboard/internal/audit"
	"github.com/cartelera/billboard/internal/config"
	"github.com/cartelera/billboard/internal/domain/user"
	"github.com/cartelera/billboard/internal/http/middlewares"
	"github.com/cartelera/billboard/internal/repo/postgres"
	"github.com/cartelera/billboard/internal/sanitize"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type AuthHandler struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	recorder *audit.Recorder
}

func NewAuthHandler(users UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder *audit.Recorder) *AuthHandler {
	return &AuthHandler{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,strongpw"`
	Role     string `json:"role" binding:"omitempty,oneof=admin artist"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	name := sanitize.Clean(req.Name)

	if name == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{
			{Field: "name", Rule: "required", Message: "is required"},
		}})
		return
	}

	if user.NameBlocked(name) {
		RespondError(ctx, http.StatusBadRequest, "blocked_name", "This artist name cannot be registered.", nil)
		return
	}

	role := req.Role
	if role == "" {
		role = user.RoleArtist
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	// registration is an unauthenticated action, so the actor stays null;
	// the created identity lives in the detail payload
	h.recorder.Record(nil, audit.ActionUserRegister, gin.H{
		"userId": u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
	}, ctx.ClientIP())

	ctx.JSON(http.StatusCreated, gin.H{
		"user": u.Summary(),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		// same shape whether the email is unknown or the password is wrong,
		// but a store outage is not a credentials problem
		if errors.Is(err, user.ErrNotFound) {
			RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Email or password is incorrect.", nil)
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if !h.hasher.Verify(req.Password, found.PasswordHash) {
		RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Email or password is incorrect.", nil)
		return
	}

	token, err := h.tokens.Issue(found.ID, found.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	// best effort, the login already succeeded
	_ = h.users.UpdateLastLogin(cctx, found.ID)

	h.recorder.Record(&found.ID, audit.ActionUserLogin, gin.H{
		"email": found.Email,
	}, ctx.ClientIP())

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  found.Summary(),
	})
}

// Profile returns the identity already resolved by the auth middleware.
func (h *AuthHandler) Profile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": u.Summary(),
	})
}
