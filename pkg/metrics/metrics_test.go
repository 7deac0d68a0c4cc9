package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSetsAppInfo(t *testing.T) {
	Init("event-service", "1.2.3")
	assert.Equal(t, 1.0, testutil.ToFloat64(AppInfo.WithLabelValues("event-service", "1.2.3")))
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(Registrations.WithLabelValues("full"))
	Registrations.WithLabelValues("full").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Registrations.WithLabelValues("full")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	Emails.WithLabelValues("sent").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eventplatform_emails_total")
}
