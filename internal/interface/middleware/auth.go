package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxTokenKey    = "access_token"
)

// IdentityResolver turns a bearer token into the caller's identity. The auth
// service resolves locally; the other services ask the auth service.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (entity.Identity, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "" when there is none.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireIdentity rejects requests without a resolvable bearer token and
// stores the identity under CtxIdentityKey.
func RequireIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			unauthorized(c, "not authenticated")
			return
		}
		id, err := resolver.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, application.ErrIdentityUnavailable):
			response.Error[any](c, http.StatusServiceUnavailable, "authentication service unavailable",
				response.ErrorBody{Code: "identity_unavailable"})
			return
		case errors.Is(err, application.ErrInactiveUser):
			response.Error[any](c, http.StatusBadRequest, "inactive user",
				response.ErrorBody{Code: "inactive_user"})
			return
		case errors.Is(err, application.ErrUnauthorized):
			unauthorized(c, "could not validate credentials")
			return
		default:
			response.Error[any](c, http.StatusInternalServerError, "internal server error",
				response.ErrorBody{Code: "internal"})
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxTokenKey, token)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Error[any](c, http.StatusUnauthorized, msg, response.ErrorBody{Code: "unauthorized"})
}

// IdentityFrom returns the identity RequireIdentity stored.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}
