package reconcile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayRecorder struct {
	mu     sync.Mutex
	method string
	path   string
	body   []byte
}

func (g *gatewayRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	g.mu.Lock()
	g.method, g.path, g.body = r.Method, r.URL.Path, b
	g.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func TestPushReport(t *testing.T) {
	rec := &gatewayRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	rep := &Report{Scanned: 4, Referenced: 2, Orphans: []string{"a", "b"}, Deleted: 1, Failed: []string{"b"}}
	require.NoError(t, PushReport(context.Background(), srv.URL, rep, false, time.Unix(1700000000, 0)))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/metrics/job/"+PushJob+"/mode/delete", rec.path)
	assert.Contains(t, string(rec.body), "portfolio_reconcile_objects")
	assert.Contains(t, string(rec.body), "portfolio_reconcile_last_run_timestamp_seconds")
}

func TestPushReportGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := PushReport(context.Background(), srv.URL, &Report{}, true, time.Now())
	require.Error(t, err)
}
