package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/pkg/response"
)

type EmailHandler struct {
	Svc    *application.NotificationService
	Logger *logrus.Logger
}

func NewEmailHandler(svc *application.NotificationService, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Svc: svc, Logger: logger}
}

type emailTestQuery struct {
	Email string `form:"email" binding:"required,email"`
}

// Test POST /email-test/?email=addr sends a test notification email and
// waits for the provider's answer.
func (h *EmailHandler) Test(c *gin.Context) {
	var q emailTestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Svc.SendTestEmail(c.Request.Context(), q.Email); err != nil {
		h.Logger.WithError(err).WithField("to", q.Email).Warn("test email failed")
		response.Error[any](c, http.StatusInternalServerError, err.Error(), response.ErrorBody{Code: "email_failed"})
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"email": q.Email}, "Test email sent successfully", nil)
}
