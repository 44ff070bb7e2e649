package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubEngine struct {
	height       int64
	pingErr      error
	invariantErr error
	pings        atomic.Int32
}

func (s *stubEngine) Height() int64 { return s.height }

func (s *stubEngine) Ping(context.Context) error {
	s.pings.Add(1)
	return s.pingErr
}

func (s *stubEngine) CheckInvariants(context.Context) error { return s.invariantErr }

type stubTelemetry struct{ err error }

func (s stubTelemetry) HealthCheck() error { return s.err }

type HealthCheckTestSuite struct {
	suite.Suite
	engine  *stubEngine
	checker *Checker
	router  *mux.Router
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.engine = &stubEngine{height: 42}
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), suite.engine, stubTelemetry{})
	suite.Require().NoError(err)
	suite.checker = checker
	suite.router = mux.NewRouter()
	checker.RegisterRoutes(suite.router)
}

func (suite *HealthCheckTestSuite) get(path string) (*httptest.ResponseRecorder, HealthCheck) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var body HealthCheck
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func (suite *HealthCheckTestSuite) TestLiveness() {
	w, _ := suite.get("/health")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"status":"ok"`)
}

func (suite *HealthCheckTestSuite) TestReadyHealthy() {
	w, body := suite.get("/health/ready")
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(StatusHealthy, body.Status)
	suite.Contains(body.Components, "store")
	suite.NotContains(body.Components, "invariants")
	suite.EqualValues(42, body.Components["store"].Metrics["height"])
}

func (suite *HealthCheckTestSuite) TestReadyUnhealthyStore() {
	suite.engine.pingErr = errors.New("db closed")

	w, body := suite.get("/health/ready")
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Equal(StatusUnhealthy, body.Status)
}

func (suite *HealthCheckTestSuite) TestDetailedRunsInvariants() {
	suite.engine.invariantErr = errors.New("total-staked broken")

	w, body := suite.get("/health/detailed")
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Equal(StatusUnhealthy, body.Components["invariants"].Status)
}

func (suite *HealthCheckTestSuite) TestReadyIsCached() {
	suite.checker.Check(context.Background(), false)
	suite.checker.Check(context.Background(), false)
	suite.Equal(int32(1), suite.engine.pings.Load())

	suite.checker.Check(context.Background(), true)
	suite.Equal(int32(2), suite.engine.pings.Load())
}

func TestTelemetryFailureDegrades(t *testing.T) {
	checker, err := NewChecker(log.NewNopLogger(), DefaultConfig(), &stubEngine{}, stubTelemetry{err: errors.New("no tracer")})
	require.NoError(t, err)

	health := checker.Check(context.Background(), false)
	require.Equal(t, StatusDegraded, health.Status)
	require.Equal(t, StatusDegraded, health.Components["telemetry"].Status)
}

func TestNewChecker_RequiresEngine(t *testing.T) {
	_, err := NewChecker(log.NewNopLogger(), DefaultConfig(), nil, nil)
	require.Error(t, err)
}

func TestCalculateOverallStatus(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]ComponentHealth
		want       Status
	}{
		{"empty", map[string]ComponentHealth{}, StatusHealthy},
		{"all healthy", map[string]ComponentHealth{"a": {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", map[string]ComponentHealth{"a": {Status: StatusHealthy}, "b": {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", map[string]ComponentHealth{"a": {Status: StatusDegraded}, "b": {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, calculateOverallStatus(tt.components))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, time.Second, cfg.MaxResponseTime)
	require.Equal(t, 5*time.Second, cfg.CacheDuration)
}
