package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"makerspace/internal/auth"
	"makerspace/internal/events"
	"makerspace/internal/httpapi"
	"makerspace/internal/seed"
	"makerspace/internal/store"
	"makerspace/pkg/config"
	"makerspace/pkg/logging"
	"makerspace/pkg/metrics"
)

const (
	adminEmail    = "admin@makerspace.local"
	adminPassword = "admin-password"
)

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	e, _ := decode(t, rec)["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func newClient(t *testing.T) (client, *events.Recorder) {
	t.Helper()
	log := logging.Discard()
	st := store.Memory()
	require.NoError(t, seed.Demo(context.Background(),
		seed.Stores{Machines: st.Machines, Courses: st.Courses, Users: st.Users},
		seed.Admin{Email: adminEmail, Password: adminPassword}, log))

	rec := &events.Recorder{}
	m := metrics.New()
	h := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:     config.Config{AllowedOrigins: []string{"http://localhost:5173"}},
		Store:   st,
		Tokens:  auth.NewTokens("test-secret", "makerspace", time.Hour),
		Events:  events.NewEmitter(rec, log, m),
		Metrics: m,
		Log:     log,
	})
	return client{t: t, h: h}, rec
}

func (c client) login(email, password string) string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := decode(c.t, rec)["token"].(string)
	require.NotEmpty(c.t, tok)
	return tok
}

func TestBookingJourney(t *testing.T) {
	c, rec := newClient(t)
	day := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	res := c.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "long-enough"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	member, _ := decode(t, res)["token"].(string)
	admin := c.login(adminEmail, adminPassword)

	booking := map[string]string{"machineId": "laser-cutter", "date": day, "time": "10:00"}

	// No safety course yet.
	res = c.do(http.MethodPost, "/v1/bookings", member, booking)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "SAFETY_COURSE_REQUIRED", errorCode(t, res))

	res = c.do(http.MethodPost, "/v1/courses/laser-101/quiz", member, map[string]any{"answers": map[string]int{"pvc": 1, "unattended": 1, "extract": 0}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "SAFETY_COURSE_REQUIRED", errorCode(t, res))
	details, _ := decode(t, res)["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "safety-course", details["redirectTo"])

	res = c.do(http.MethodPost, "/v1/courses/safety-101/quiz", member, map[string]any{"answers": map[string]int{"exits": 0, "alone": 1, "ppe": 0}})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = c.do(http.MethodGet, "/v1/machines/laser-cutter/eligibility?date="+day+"&time=10:00", member, nil)
	require.Equal(t, http.StatusOK, res.Code)
	decision, _ := decode(t, res)["decision"].(map[string]any)
	assert.Equal(t, "not-certified", decision["reason"])

	res = c.do(http.MethodPost, "/v1/courses/laser-101/quiz", member, map[string]any{"answers": map[string]int{"pvc": 1, "unattended": 1, "extract": 0}})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = c.do(http.MethodPost, "/v1/bookings", member, booking)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Equal(t, "Pending", decode(t, res)["status"])

	// Admins skip certification but not the calendar.
	res = c.do(http.MethodPost, "/v1/bookings", admin, map[string]string{"machineId": "laser-cutter", "date": day, "time": "10:30-11:30"})
	assert.Equal(t, http.StatusConflict, res.Code)

	res = c.do(http.MethodPatch, "/v1/admin/machines/laser-cutter/status", admin, map[string]string{"status": "maintenance", "note": "lens swap"})
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	conflicts, _ := decode(t, res)["conflicts"].([]any)
	assert.Len(t, conflicts, 1)

	res = c.do(http.MethodGet, "/v1/machines/laser-cutter/eligibility?date="+day+"&time=14:00", member, nil)
	require.Equal(t, http.StatusOK, res.Code)
	decision, _ = decode(t, res)["decision"].(map[string]any)
	assert.Equal(t, "machine-unavailable", decision["reason"])

	res = c.do(http.MethodGet, "/v1/bookings/mine", member, nil)
	require.Equal(t, http.StatusOK, res.Code)
	items, _ := decode(t, res)["items"].([]any)
	assert.Len(t, items, 1)

	res = c.do(http.MethodGet, "/v1/admin/audit/machine/laser-cutter", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	items, _ = decode(t, res)["items"].([]any)
	assert.Len(t, items, 1)

	assert.Contains(t, rec.Topics(), events.TopicBookingCreated)
	assert.Contains(t, rec.Topics(), events.TopicMachineStatusChanged)
}

func TestAccessControl(t *testing.T) {
	c, _ := newClient(t)
	res := c.do(http.MethodPost, "/v1/auth/register", "", map[string]string{"name": "Bob", "email": "bob@example.com", "password": "long-enough"})
	require.Equal(t, http.StatusCreated, res.Code)
	member, _ := decode(t, res)["token"].(string)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/machines", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/machines", member, nil).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/v1/admin/users", member, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email": "bob@example.com", "password": "wrong-one"}).Code)

	res = c.do(http.MethodGet, "/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, res))
}

func TestOperationalEndpoints(t *testing.T) {
	c, _ := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", "", nil).Code)

	c.do(http.MethodGet, "/healthz", "", nil)
	res := c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "makerspace_http_requests_total")
}
