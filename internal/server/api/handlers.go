package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/dmitrijs2005/useradmin/internal/server/auth"
	"github.com/dmitrijs2005/useradmin/internal/server/models"
	"github.com/dmitrijs2005/useradmin/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	TokenAuthenticator
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Logout(ctx context.Context, claims *auth.Claims)
	List(ctx context.Context, f models.UserFilter) ([]*models.User, int, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, in services.CreateUserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in services.UpdateUserInput) (*models.User, error)
	Deactivate(ctx context.Context, actorID, id int64) error
	Reactivate(ctx context.Context, id int64) (*models.User, error)
	RegeneratePassword(ctx context.Context, id int64) (*models.User, string, error)
}

type Handler struct {
	users UserService
	prom  *Prom
	log   logging.Logger
}

func NewHandler(users UserService, prom *Prom, log logging.Logger) *Handler {
	return &Handler{users: users, prom: prom, log: log}
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	RoleID    int    `json:"roleId"`
	IsActive  bool   `json:"isActive"`
	CreatedAt string `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// respondServiceError maps service errors to statuses and messages.
func (h *Handler) respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		RespondError(ctx, http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		RespondError(ctx, http.StatusConflict, "Email already exists")
	case errors.Is(err, services.ErrSelfDeactivation):
		RespondError(ctx, http.StatusBadRequest, "You cannot deactivate your own account")
	default:
		h.log.Error(ctx.Request.Context(), "request failed", "error", err, "request_id", requestIDFrom(ctx))
		RespondError(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func userIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(ctx, http.StatusNotFound, "User not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(ctx *gin.Context) {
	var req loginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	user, token, err := h.users.Login(ctx.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, common.ErrorInvalidCredentials):
		h.prom.LoginsTotal.WithLabelValues("rejected").Inc()
		RespondError(ctx, http.StatusUnauthorized, "Invalid credentials")
		return
	case errors.Is(err, common.ErrorInactiveAccount):
		h.prom.LoginsTotal.WithLabelValues("rejected").Inc()
		RespondError(ctx, http.StatusForbidden, "Account is deactivated")
		return
	case err != nil:
		h.prom.LoginsTotal.WithLabelValues("error").Inc()
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.LoginsTotal.WithLabelValues("success").Inc()
	respondData(ctx, http.StatusOK, gin.H{
		"user":  toUserResponse(user),
		"token": gin.H{"type": "bearer", "value": token},
	})
}

func (h *Handler) Logout(ctx *gin.Context) {
	if claims, ok := claimsFrom(ctx); ok {
		h.users.Logout(ctx.Request.Context(), claims)
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type listQuery struct {
	Search string `form:"search"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive all"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
}

type pageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"perPage"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		RespondError(ctx, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Page == 0 {
		q.Page = 1
	}

	if q.Status == "all" {
		q.Status = ""
	}

	filter := models.UserFilter{Search: q.Search, Status: q.Status, Limit: q.Limit, Page: q.Page}
	list, total, err := h.users.List(ctx.Request.Context(), filter)
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	data := make([]userResponse, 0, len(list))
	for _, u := range list {
		data = append(data, toUserResponse(u))
	}
	lastPage := max(1, (total+q.Limit-1)/q.Limit)

	ctx.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": pageMeta{Total: total, PerPage: q.Limit, CurrentPage: q.Page, LastPage: lastPage},
	})
}

func (h *Handler) GetUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	user, err := h.users.Get(ctx.Request.Context(), id)
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, toUserResponse(user))
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	RoleID   int    `json:"roleId" binding:"required,oneof=1 2"`
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var req createUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	user, err := h.users.Create(ctx.Request.Context(), services.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		RoleID:   req.RoleID,
	})
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.UserActions.WithLabelValues("create").Inc()
	respondData(ctx, http.StatusCreated, toUserResponse(user))
}

type updateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	FullName *string `json:"fullName" binding:"omitempty,min=1"`
	RoleID   *int    `json:"roleId" binding:"omitempty,oneof=1 2"`
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}
	var req updateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	user, err := h.users.Update(ctx.Request.Context(), id, services.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		RoleID:   req.RoleID,
	})
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.UserActions.WithLabelValues("update").Inc()
	respondData(ctx, http.StatusOK, toUserResponse(user))
}

func (h *Handler) DeactivateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}
	claims, _ := claimsFrom(ctx)
	actorID, _ := claims.UserID()

	if err := h.users.Deactivate(ctx.Request.Context(), actorID, id); err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.UserActions.WithLabelValues("deactivate").Inc()
	ctx.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}

func (h *Handler) ReactivateUser(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	user, err := h.users.Reactivate(ctx.Request.Context(), id)
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.UserActions.WithLabelValues("reactivate").Inc()
	respondData(ctx, http.StatusOK, toUserResponse(user))
}

func (h *Handler) RegeneratePassword(ctx *gin.Context) {
	id, ok := userIDParam(ctx)
	if !ok {
		return
	}

	user, password, err := h.users.RegeneratePassword(ctx.Request.Context(), id)
	if err != nil {
		h.respondServiceError(ctx, err)
		return
	}

	h.prom.UserActions.WithLabelValues("regenerate_password").Inc()
	respondData(ctx, http.StatusOK, gin.H{
		"newPassword": password,
		"email":       user.Email,
		"fullName":    user.FullName,
	})
}
