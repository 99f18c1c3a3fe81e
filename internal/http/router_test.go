package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	formhandler "github.com/werterpires/salt-in-forms-back-sub000/internal/form/handler"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/handler/mocks"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/form/models"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/jwt"
	"github.com/werterpires/salt-in-forms-back-sub000/internal/platform/metrics"
	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/request"
	"github.com/werterpires/salt-in-forms-back-sub000/pkg/testutil"
)

func newRouter(t *testing.T, checks map[string]HealthCheck) (http.Handler, *mocks.MockStructureService, *jwt.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)
	structure := mocks.NewMockStructureService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewService("key", "issuer", "forms-admin")
	reg := prometheus.NewRegistry()

	router := NewRouter(Deps{
		Forms:    formhandler.New(structure, mocks.NewMockIntakeService(ctrl), logger),
		Tokens:   tokens,
		Logger:   logger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   checks,
	})
	return router, structure, tokens
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, structure, tokens := newRouter(t, nil)
	formID := id.NewFormID()

	req := httptest.NewRequest(http.MethodGet, "/admin/forms/"+formID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get(request.HeaderRequestID))

	token, err := tokens.Issue("ana", jwt.RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)
	structure.EXPECT().GetForm(gomock.Any(), formID).Return(&models.Form{ID: formID}, nil)

	req = httptest.NewRequest(http.MethodGet, "/admin/forms/"+formID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(request.HeaderRequestID, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(request.HeaderRequestID))
}

func TestHealthAndMetrics(t *testing.T) {
	healthy, _, _ := newRouter(t, map[string]HealthCheck{
		"store": func(context.Context) error { return nil },
	})
	w := httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	healthy.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "forms_http_request_duration_seconds")

	down, _, _ := newRouter(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"down"`)
}

func TestPublicLimitGuardsCandidateRoutesOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reject := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := NewRouter(Deps{
		Forms:       formhandler.New(mocks.NewMockStructureService(ctrl), mocks.NewMockIntakeService(ctrl), logger),
		Tokens:      jwt.NewService("key", "issuer", "forms-admin"),
		Logger:      logger,
		PublicLimit: reject,
	})

	w := testutil.Do(router, testutil.NewJSONRequest(t, http.MethodPost, "/questions/"+id.NewFormID().String()+"/validate", map[string]string{"answer": "x"}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = testutil.Do(router, httptest.NewRequest(http.MethodGet, "/admin/forms/"+id.NewFormID().String(), nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
