package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          string(body),
	})
	status, payload := f.status, f.body
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeAPI) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestSession(t *testing.T, api *fakeAPI, token string) (*Session, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	store := NewMemoryStore(token)
	client := New(Config{BaseURL: srv.URL + "/", Timeout: time.Second})
	return client.Bind(store), store
}

func TestAuthorizationHeader(t *testing.T) {
	api := &fakeAPI{body: `[]`}

	anon, _ := newTestSession(t, api, "")
	_, err := anon.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, api.last(t).Authorization)

	authed, _ := newTestSession(t, api, "tok-123")
	_, err = authed.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", api.last(t).Authorization)
}

func TestURLPrefixing(t *testing.T) {
	client := New(Config{BaseURL: "http://api.local"})
	cases := map[string]string{
		"/auth/login":     "http://api.local/auth/login",
		"/auth/me":        "http://api.local/auth/me",
		"/orders/":        "http://api.local/api/orders/",
		"/materials/stock": "http://api.local/api/materials/stock",
		"stats/totals":    "http://api.local/api/stats/totals",
	}
	for path, want := range cases {
		assert.Equal(t, want, client.URL(path), path)
	}
}

type countingTransport struct {
	calls int
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls++
	return http.DefaultTransport.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(&fakeAPI{body: `[]`})
	t.Cleanup(srv.Close)
	transport := &countingTransport{}
	client := New(Config{BaseURL: srv.URL}, WithHTTPClient(&http.Client{Transport: transport}), WithHTTPClient(nil))

	_, err := client.Bind(NewMemoryStore("tok")).ListFilms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.calls)
}

func TestUnauthorizedClearsToken(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized, body: `{"detail":"expired"}`}
	sess, store := newTestSession(t, api, "old")

	resp, err := sess.Do(context.Background(), Request{Name: "orders.list", Path: "/orders/"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, store.AccessToken())

	store.SetAccessToken("again")
	_, err = sess.ListMaterials(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, store.AccessToken())
}

func TestOtherStatusesReturnedUntouched(t *testing.T) {
	api := &fakeAPI{status: http.StatusBadGateway, body: `InSales API timeout`}
	sess, store := newTestSession(t, api, "tok")

	resp, err := sess.Do(context.Background(), Request{Name: "orders.import", Method: http.MethodPost, Path: "/orders/import"})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusBadGateway, resp.Status)
	assert.Equal(t, "InSales API timeout", resp.Text())
	assert.Equal(t, "tok", store.AccessToken())

	_, err = sess.ImportOrders(context.Background())
	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Equal(t, "InSales API timeout", se.Body)
}

func TestLoginStoresToken(t *testing.T) {
	api := &fakeAPI{body: `{"access_token":"fresh","token_type":"bearer"}`}
	sess, store := newTestSession(t, api, "")

	require.NoError(t, sess.Login(context.Background(), "anna", "secret"))
	assert.Equal(t, "fresh", store.AccessToken())

	req := api.last(t)
	assert.Equal(t, "/auth/login", req.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", req.ContentType)
	assert.Equal(t, "password=secret&username=anna", req.Body)

	sess.Logout()
	assert.Empty(t, store.AccessToken())
}

func TestLoginRejected(t *testing.T) {
	api := &fakeAPI{status: http.StatusBadRequest, body: `{"detail":"Incorrect username or password"}`}
	sess, store := newTestSession(t, api, "")
	err := sess.Login(context.Background(), "anna", "bad")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, store.AccessToken())
}

func TestAdjustAndMinimumQueries(t *testing.T) {
	api := &fakeAPI{body: `{"ok":true}`}
	sess, _ := newTestSession(t, api, "tok")

	require.NoError(t, sess.AdjustStock(context.Background(), 4, decimal.NewFromInt(-3)))
	req := api.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/materials/4/adjust", req.Path)
	assert.Equal(t, "delta=-3", req.RawQuery)

	require.NoError(t, sess.SetMinimum(context.Background(), 4, decimal.RequireFromString("2.5")))
	req = api.last(t)
	assert.Equal(t, "/api/materials/4/min", req.Path)
	assert.Equal(t, "value=2.5", req.RawQuery)
}

func TestTotalsQueryAndOrder(t *testing.T) {
	api := &fakeAPI{body: `{"Плёнка":12.5,"Коробка":3,"Скотч":0}`}
	sess, _ := newTestSession(t, api, "tok")

	totals, err := sess.Totals(context.Background(), Period{})
	require.NoError(t, err)
	assert.Equal(t, "/api/stats/totals", api.last(t).Path)
	assert.Empty(t, api.last(t).RawQuery)
	require.Len(t, totals, 3)
	assert.Equal(t, []string{"Плёнка", "Коробка", "Скотч"}, []string{totals[0].Label, totals[1].Label, totals[2].Label})
	assert.True(t, totals[0].Value.Equal(decimal.RequireFromString("12.5")))

	_, err = sess.Totals(context.Background(), Period{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.Equal(t, "month=3&year=2024", api.last(t).RawQuery)
}

func TestCreateRulesPostsArray(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	sess, _ := newTestSession(t, api, "tok")

	_, err := sess.CreateRules(context.Background(), []RuleInput{{Pattern: "WIDGET", MaterialID: 7, Qty: 2}})
	require.NoError(t, err)
	req := api.last(t)
	assert.Equal(t, "/api/rules/", req.Path)
	assert.Equal(t, "application/json", req.ContentType)

	var got []RuleInput
	require.NoError(t, json.Unmarshal([]byte(req.Body), &got))
	assert.Equal(t, []RuleInput{{Pattern: "WIDGET", MaterialID: 7, Qty: 2}}, got)
}

func TestChangePasswordBody(t *testing.T) {
	api := &fakeAPI{body: `{"ok":true}`}
	sess, _ := newTestSession(t, api, "tok")

	require.NoError(t, sess.ChangePassword(context.Background(), "7f1c", "hunter22"))
	req := api.last(t)
	assert.Equal(t, "/api/users/7f1c/password", req.Path)
	assert.JSONEq(t, `{"new_password":"hunter22"}`, req.Body)
}

func TestDecodeOrdersAndHistory(t *testing.T) {
	api := &fakeAPI{body: `[{"id":1,"number":"1001","customer":null,"created_at":"2024-03-05T10:20:30","ignored":true,"lines":[{"product_id":9,"product_title":"Плёнка","quantity":2}]}]`}
	sess, _ := newTestSession(t, api, "tok")

	orders, err := sess.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].Customer)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC), orders[0].CreatedAt.Time)
	assert.Equal(t, "Плёнка", orders[0].Lines[0].ProductTitle)

	api.body = `[{"order_id":null,"order_number":null,"qty":-1.5,"dt":"2024-03-05T10:20:30.123456"}]`
	history, err := sess.History(context.Background(), 3, 50)
	require.NoError(t, err)
	assert.Equal(t, "limit=50", api.last(t).RawQuery)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OrderNumber)
	assert.True(t, history[0].Qty.Equal(decimal.RequireFromString("-1.5")))
}

type countingObserver struct {
	names []string
	codes []int
}

func (o *countingObserver) ObserveUpstream(name string, status int, elapsed time.Duration) {
	o.names = append(o.names, name)
	o.codes = append(o.codes, status)
}

func TestObserverReceivesCalls(t *testing.T) {
	api := &fakeAPI{body: `[]`}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	obs := &countingObserver{}
	sess := New(Config{BaseURL: srv.URL}, WithObserver(obs)).Bind(NewMemoryStore("tok"))

	_, err := sess.ListRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"rules.list"}, obs.names)
	assert.Equal(t, []int{http.StatusOK}, obs.codes)
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sign := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "anna", "exp": exp.Unix()})
		signed, err := tok.SignedString([]byte("k"))
		require.NoError(t, err)
		return signed
	}

	assert.True(t, TokenExpired("", now))
	assert.True(t, TokenExpired(sign(now.Add(-time.Minute)), now))
	assert.False(t, TokenExpired(sign(now.Add(time.Hour)), now))
	assert.False(t, TokenExpired("opaque-token", now))
}

func TestStatusErrorMessage(t *testing.T) {
	err := error(&StatusError{Status: 404, Body: "Материал не найден"})
	assert.Equal(t, "apiclient: status 404: Материал не найден", err.Error())
	_, ok := AsStatusError(errors.New("plain"))
	assert.False(t, ok)
}
