package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.BookingsCreated.Inc()
	a.EligibilityDecisions.WithLabelValues("time-slot-taken").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BookingsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BookingsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.EligibilityDecisions.WithLabelValues("time-slot-taken")))
}

func TestHandler_ExposesNamespace(t *testing.T) {
	m := New()
	m.QuizAttempts.WithLabelValues("passed").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `makerspace_quiz_attempts_total{result="passed"} 1`))
}
