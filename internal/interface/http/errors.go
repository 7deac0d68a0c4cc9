package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/pkg/response"
	"github.com/oksasatya/go-event-platform/pkg/validation"
)

// respondError maps an application error onto its status code. Anything
// that is not one of the known kinds is logged and reported as 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed",
			response.ErrorBody{Code: "validation", Details: map[string]string{verr.Field: verr.Reason}})
	case errors.Is(err, application.ErrConflict):
		response.Error[any](c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "conflict"})
	case errors.Is(err, application.ErrEventFull):
		response.Error[any](c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "event_full"})
	case errors.Is(err, application.ErrInactiveUser):
		response.Error[any](c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "inactive_user"})
	case errors.Is(err, application.ErrValidation):
		response.Error[any](c, http.StatusBadRequest, err.Error(), response.ErrorBody{Code: "validation"})
	case errors.Is(err, application.ErrUnauthorized):
		c.Header("WWW-Authenticate", "Bearer")
		response.Error[any](c, http.StatusUnauthorized, err.Error(), response.ErrorBody{Code: "unauthorized"})
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, err.Error(), response.ErrorBody{Code: "forbidden"})
	case errors.Is(err, application.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), response.ErrorBody{Code: "not_found"})
	case errors.Is(err, application.ErrIdentityUnavailable), errors.Is(err, application.ErrAvatarStorageDisabled):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), response.ErrorBody{Code: "unavailable"})
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", response.ErrorBody{Code: "internal"})
	}
}

// bindError reports a malformed or invalid request body or query.
func bindError(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload",
		response.ErrorBody{Code: "validation", Details: validation.ToDetails(err)})
}
