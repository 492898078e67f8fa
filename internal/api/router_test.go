package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/render"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/service"
	"github.com/akylbek/payment-system/fraud-dashboard/internal/state"
)

type stubScoring struct {
	result *models.ClassificationResult
	err    error
}

func (s *stubScoring) Health(context.Context) error { return nil }

func (s *stubScoring) Predict(context.Context, *models.TestTransaction) (*models.ClassificationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	return &r, nil
}

func newTestRouter(scoring *stubScoring) (*state.DashboardState, http.Handler) {
	st := state.NewDashboardState(nil)
	return st, NewRouter(st, service.NewSubmitter(st, scoring, service.SubmitterOptions{}))
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	_, r := newTestRouter(&stubScoring{})

	w := do(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"fraud-dashboard"}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fraud_dashboard_")
}

func TestDashboardPage_Initial(t *testing.T) {
	_, r := newTestRouter(&stubScoring{})

	w := do(t, r, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Fraud Detection Dashboard")
	assert.Contains(t, body, render.StreamPlaceholder)
	assert.Contains(t, body, render.AlertsLoadingPlaceholder)
	assert.Contains(t, body, "ML Service: ●")
	assert.Contains(t, body, `id="fraud-rate">0%`)
}

func TestSubmitTest_JSON(t *testing.T) {
	st, r := newTestRouter(&stubScoring{result: &models.ClassificationResult{IsFraud: true, FraudProbability: 0.87, RiskLevel: models.RiskHigh}})

	w := do(t, r, http.MethodPost, "/api/v1/transactions/test", "application/json",
		`{"amount":"100.50","hour":23,"type":"online","day":"6"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Transaction models.TestTransaction `json:"transaction"`
		Banner      render.Banner          `json:"banner"`
		Stats       state.Stats            `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "FRAUD DETECTED", out.Banner.Title)
	assert.Equal(t, "87.00%", out.Banner.Probability)
	assert.Equal(t, models.RiskHigh, out.Banner.RiskLevel)
	assert.Equal(t, state.Stats{TotalTransactions: 1, FraudCount: 1}, out.Stats)
	assert.True(t, bool(out.Transaction.IsWeekend))
	assert.True(t, bool(out.Transaction.IsNight))

	w = do(t, r, http.MethodGet, "/api/v1/state", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d render.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, st.SessionID(), d.SessionID)
	assert.Equal(t, "100.0%", d.Stats.FraudRate)
	require.Len(t, d.Stream, 1)
	assert.Equal(t, "$100.50", d.Stream[0].Amount)
	assert.Len(t, d.Chart.Labels, 1)
}

func TestSubmitTest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		scoring *stubScoring
		body    string
		status  int
	}{
		{name: "malformed json", scoring: &stubScoring{}, body: `{`, status: http.StatusBadRequest},
		{name: "invalid amount", scoring: &stubScoring{}, body: `{"amount":"abc","hour":"1","type":"atm","day":"1"}`, status: http.StatusBadRequest},
		{name: "hour out of range", scoring: &stubScoring{}, body: `{"amount":"1","hour":"24","type":"atm","day":"1"}`, status: http.StatusBadRequest},
		{name: "scoring down", scoring: &stubScoring{err: errors.New("ml-service unreachable")}, body: `{"amount":"1","hour":"1","type":"atm","day":"1"}`, status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, r := newTestRouter(tt.scoring)

			w := do(t, r, http.MethodPost, "/api/v1/transactions/test", "application/json", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var out struct {
				Banner render.Banner `json:"banner"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
			assert.Equal(t, "error", out.Banner.Kind)
			assert.True(t, strings.HasPrefix(out.Banner.Message, "Error: "))
			assert.Equal(t, state.Stats{}, st.Stats())
		})
	}
}

func TestSubmitForm(t *testing.T) {
	_, r := newTestRouter(&stubScoring{result: &models.ClassificationResult{FraudProbability: 0.1, RiskLevel: models.RiskLow}})

	form := url.Values{"amount": {"42"}, "hour": {"10"}, "type": {"atm"}, "day": {"1"}}
	w := do(t, r, http.MethodPost, "/test", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "NORMAL TRANSACTION")
	assert.Contains(t, body, "10.00%")
	assert.Contains(t, body, "$42.00")
	assert.Contains(t, body, `<option value="atm" selected>`)
}

func TestStatusEndpoints(t *testing.T) {
	st, r := newTestRouter(&stubScoring{})
	st.SetHealth(models.ServiceScoring, nil, time.Now())
	st.SetHealth(models.ServiceAlerts, errors.New("connection refused"), time.Now())

	w := do(t, r, http.MethodGet, "/api/ml-status", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"online"`)

	w = do(t, r, http.MethodGet, "/api/alert-status", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"offline"`)
}
