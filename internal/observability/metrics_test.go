package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordGitHubCall(t *testing.T) {
	before := testutil.ToFloat64(githubCalls.WithLabelValues("user", "200"))
	RecordGitHubCall("user", http.StatusOK)
	require.Equal(t, before+1, testutil.ToFloat64(githubCalls.WithLabelValues("user", "200")))
}

func TestRecordSyncOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(syncRuns.WithLabelValues("manual", "success"))
	failBefore := testutil.ToFloat64(syncRuns.WithLabelValues("manual", "failure"))

	RecordSync("manual", time.Now(), nil)
	RecordSync("manual", time.Now(), errors.New("boom"))

	require.Equal(t, okBefore+1, testutil.ToFloat64(syncRuns.WithLabelValues("manual", "success")))
	require.Equal(t, failBefore+1, testutil.ToFloat64(syncRuns.WithLabelValues("manual", "failure")))
	require.Greater(t, testutil.ToFloat64(syncLastSuccess), 0.0)
}

func TestInstrumentLabelsRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Instrument)
	r.HandleFunc("/api/goals/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("/api/goals/{id}", http.MethodDelete, "204"))
	req := httptest.NewRequest(http.MethodDelete, "/api/goals/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/goals/{id}", http.MethodDelete, "204")))
}
