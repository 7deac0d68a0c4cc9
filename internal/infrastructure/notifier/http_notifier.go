package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-event-platform/internal/domain/entity"
	"github.com/oksasatya/go-event-platform/pkg/metrics"
)

// HTTPNotifier posts notifications to the notification service in the
// background. Delivery is at most once: a failed post is logged and dropped.
type HTTPNotifier struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *logrus.Logger

	wg sync.WaitGroup
}

func NewHTTPNotifier(baseURL string, timeout time.Duration, logger *logrus.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		url:     baseURL + "/notifications/",
		timeout: timeout,
		client:  &http.Client{},
		logger:  logger,
	}
}

// Notify returns immediately.
func (n *HTTPNotifier) Notify(msg entity.NewNotification) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.post(msg)
	}()
}

func (n *HTTPNotifier) post(msg entity.NewNotification) {
	log := n.logger.WithFields(logrus.Fields{"user_id": msg.UserID, "type": msg.NotificationType})

	b, err := json.Marshal(msg)
	if err != nil {
		metrics.NotificationRelay.WithLabelValues("error").Inc()
		log.WithError(err).Warn("notification encode failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(b))
	if err != nil {
		metrics.NotificationRelay.WithLabelValues("error").Inc()
		log.WithError(err).Warn("notification request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.NotificationRelay.WithLabelValues("error").Inc()
		log.WithError(err).Warn("notification service unreachable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		metrics.NotificationRelay.WithLabelValues("rejected").Inc()
		log.WithField("status", resp.StatusCode).Warn("notification rejected")
		return
	}
	metrics.NotificationRelay.WithLabelValues("sent").Inc()
}

// Wait blocks until in-flight posts finish or ctx is done.
func (n *HTTPNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
