package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/internal/interface/middleware"
	"github.com/oksasatya/go-event-platform/pkg/response"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Username *string `json:"username" binding:"omitempty,username"`
	FullName *string `json:"full_name" binding:"omitempty,max=100"`
	Password *string `json:"password" binding:"omitempty,pwd"`
}

// me loads the caller. A token whose user vanished is no longer valid.
func (h *UserHandler) me(c *gin.Context) (*entity.User, bool) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, h.Logger, application.ErrInvalidToken)
		return nil, false
	}
	u, err := h.Svc.GetUser(c.Request.Context(), who.ID)
	if errors.Is(err, application.ErrUserNotFound) {
		err = application.ErrInvalidToken
	}
	if err != nil {
		respondError(c, h.Logger, err)
		return nil, false
	}
	return u, true
}

// Me GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, ok := h.me(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile", nil)
}

// UpdateMe PUT /users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), who.ID, application.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

// UploadAvatar PUT /users/me/avatar, multipart field "file".
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, h.Logger, application.ErrInvalidToken)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.Logger, &application.ValidationError{Field: "file", Reason: "is required and must be at most 5 MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), who.ID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "avatar updated", nil)
}

// List GET /users/
func (h *UserHandler) List(c *gin.Context) {
	skip, limit, err := page(c)
	if err != nil {
		bindError(c, err)
		return
	}
	users, err := h.Svc.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "users", map[string]int{"skip": skip, "limit": limit})
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), entity.UserID(id))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}
