package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/console/internal/apiclient"
	jobmetrics "github.com/stockdesk/console/internal/jobs"
)

type upstream struct {
	mu       sync.Mutex
	logins   int
	imports  int
	expireAt int
	calls    int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/login":
		u.logins++
		_, _ = io.WriteString(w, `{"access_token":"svc","token_type":"bearer"}`)
	case "/api/orders/import":
		u.calls++
		if u.calls == u.expireAt {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		u.imports++
		_, _ = io.WriteString(w, `{"imported":4}`)
	case "/api/materials/stock":
		_, _ = io.WriteString(w, `[{"id":1,"name":"Плёнка","unit":"м","qty":2,"min_qty":5},{"id":2,"name":"Коробка","unit":"шт","qty":10,"min_qty":1}]`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newAccount(t *testing.T, up *upstream) *ServiceAccount {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)
	return NewServiceAccount(apiclient.New(apiclient.Config{BaseURL: srv.URL}), "worker", "secret")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOrdersImportLogsInOnce(t *testing.T) {
	up := &upstream{}
	job := NewOrdersImportJob(newAccount(t, up), quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewOrdersImportTask("schedule")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, up.logins)
	assert.Equal(t, 2, up.imports)
}

func TestOrdersImportRetriesAfterUnauthorized(t *testing.T) {
	up := &upstream{expireAt: 2}
	job := NewOrdersImportJob(newAccount(t, up), quietLogger(), nil)
	task, err := NewOrdersImportTask("schedule")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 2, up.logins)
	assert.Equal(t, 2, up.imports)
}

func TestOrdersImportRejectsBadPayload(t *testing.T) {
	job := NewOrdersImportJob(newAccount(t, &upstream{}), quietLogger(), nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskOrdersImport, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestServiceAccountNeedsCredentials(t *testing.T) {
	account := NewServiceAccount(apiclient.New(apiclient.Config{BaseURL: "http://127.0.0.1:1"}), "", "")
	err := account.Run(context.Background(), func(context.Context, *apiclient.Session) error { return nil })
	assert.Error(t, err)
}

func TestLowStock(t *testing.T) {
	d := decimal.RequireFromString
	low := LowStock([]apiclient.StockRow{
		{ID: 1, Qty: d("2"), MinQty: d("5")},
		{ID: 2, Qty: d("5"), MinQty: d("5")},
		{ID: 3, Qty: d("0"), MinQty: d("0")},
		{ID: 4, Qty: d("9"), MinQty: d("5")},
	})
	require.Len(t, low, 2)
	assert.Equal(t, int64(1), low[0].ID)
	assert.Equal(t, int64(2), low[1].ID)
}

func TestStockScanHandles(t *testing.T) {
	job := NewStockScanJob(newAccount(t, &upstream{}), quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewStockScanTask("schedule")
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))
}

type fakeInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (f fakeInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return f.info, f.err }

func TestHealthEndpoint(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(fakeInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Retry: 1}}, quietLogger()).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, QueueHealth{Queue: "default", Pending: 3, Retry: 1}, body)

	r = chi.NewRouter()
	r.Route("/jobs", NewHandler(fakeInspector{err: errors.New("redis down")}, quietLogger()).MountRoutes)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
