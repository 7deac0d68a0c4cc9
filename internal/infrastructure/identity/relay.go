package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/oksasatya/go-event-platform/internal/application"
	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/helpers"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
)

const cachePrefix = "auth:identity:"

// Relay resolves bearer tokens by asking the auth service who they belong
// to. A non-200 answer means the token is not valid; no answer at all means
// the auth service is unavailable. The two never collapse into one.
type Relay struct {
	baseURL  string
	timeout  time.Duration
	client   *http.Client
	cache    redis.Cmdable
	cacheTTL time.Duration
	logger   *logrus.Logger
	group    singleflight.Group
}

// Option configures a Relay.
type Option func(*Relay)

// WithCache enables caching of successful resolutions for ttl.
func WithCache(rdb redis.Cmdable, ttl time.Duration) Option {
	return func(r *Relay) {
		if rdb != nil && ttl > 0 {
			r.cache, r.cacheTTL = rdb, ttl
		}
	}
}

// WithHTTPClient replaces the default client; tests point it at httptest.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) { r.client = c }
}

func NewRelay(baseURL string, timeout time.Duration, logger *logrus.Logger, opts ...Option) *Relay {
	r := &Relay{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cachePrefix + hex.EncodeToString(sum[:])
}

// Resolve returns the identity behind token, application.ErrUnauthorized
// when the auth service rejects it, or application.ErrIdentityUnavailable
// when the auth service cannot be reached in time.
func (r *Relay) Resolve(ctx context.Context, token string) (entity.Identity, error) {
	if token == "" {
		return entity.Identity{}, application.ErrUnauthorized
	}
	key := cacheKey(token)

	if r.cache != nil {
		var id entity.Identity
		hit, err := helpers.RedisGetJSON(ctx, r.cache, key, &id)
		if err != nil {
			r.logger.WithError(err).Warn("identity cache read failed")
		}
		if hit {
			metrics.IdentityLookups.WithLabelValues("cache_hit").Inc()
			return id, nil
		}
	}

	// Concurrent lookups of one token share a single remote call. The call
	// is detached from any one caller's cancellation.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		return r.fetch(context.WithoutCancel(ctx), token)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return entity.Identity{}, fmt.Errorf("%w: %v", application.ErrIdentityUnavailable, ctx.Err())
	}
	if res.Err != nil {
		return entity.Identity{}, res.Err
	}
	id := res.Val.(entity.Identity)

	if r.cache != nil {
		if err := helpers.RedisSetJSON(ctx, r.cache, key, id, r.cacheTTL); err != nil {
			r.logger.WithError(err).Warn("identity cache write failed")
		}
	}
	return id, nil
}

func (r *Relay) fetch(ctx context.Context, token string) (entity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/users/me", nil)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("%w: %v", application.ErrIdentityUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		metrics.IdentityLookups.WithLabelValues("unavailable").Inc()
		r.logger.WithError(err).Warn("auth service unreachable")
		return entity.Identity{}, fmt.Errorf("%w: %v", application.ErrIdentityUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.IdentityLookups.WithLabelValues("unauthorized").Inc()
		return entity.Identity{}, application.ErrUnauthorized
	}

	var body struct {
		Data entity.Identity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Data.ID == 0 {
		metrics.IdentityLookups.WithLabelValues("unavailable").Inc()
		return entity.Identity{}, fmt.Errorf("%w: malformed identity response", application.ErrIdentityUnavailable)
	}
	metrics.IdentityLookups.WithLabelValues("ok").Inc()
	return body.Data, nil
}
