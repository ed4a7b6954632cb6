package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	mu       sync.Mutex
	payloads []map[string]interface{}
	status   int
	body     string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var p map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&p)
	u.mu.Lock()
	u.payloads = append(u.payloads, p)
	status, body := u.status, u.body
	u.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (u *upstream) received() []map[string]interface{} {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]map[string]interface{}{}, u.payloads...)
}

type provisioned struct {
	mu    sync.Mutex
	users [][2]string
}

func (p *provisioned) Provision(ctx context.Context, username, password string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, [2]string{username, password})
	return nil
}

func (p *provisioned) calls() [][2]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][2]string{}, p.users...)
}

type fixture struct {
	server *Server
	http   *httptest.Server
	up     *upstream
	prov   *provisioned
}

func newFixture(t *testing.T, body string, opts ...Option) *fixture {
	t.Helper()

	up := &upstream{body: body}
	upTS := httptest.NewServer(up)
	t.Cleanup(upTS.Close)

	prov := &provisioned{}
	s, err := New(Config{UpstreamURL: upTS.URL, UIDTTL: time.Hour}, append([]Option{WithProvisioner(prov)}, opts...)...)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &fixture{server: s, http: ts, up: up, prov: prov}
}

func (f *fixture) post(t *testing.T, path, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(f.http.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestMissingUID(t *testing.T) {
	f := newFixture(t, `{}`)

	for _, body := range []string{`{"action":"check"}`, `{"UID":"","action":"check"}`, `not json`} {
		status, out := f.post(t, "/", body)
		assert.Equal(t, http.StatusNotFound, status, body)
		assert.Equal(t, map[string]interface{}{"Error": "Unknown request.", "State": float64(-1)}, out, body)
	}
	assert.Empty(t, f.up.received())
}

func TestMissingOrUnknownAction(t *testing.T) {
	f := newFixture(t, `{}`)

	for _, body := range []string{`{"UID":"04A2"}`, `{"UID":"04A2","action":"delete"}`} {
		status, out := f.post(t, "/", body)
		assert.Equal(t, http.StatusNotFound, status, body)
		assert.Empty(t, out, body)
	}
	assert.Empty(t, f.up.received())
}

func TestAuthMarksActive(t *testing.T) {
	f := newFixture(t, `{}`)

	status, out := f.post(t, "/", `{"UID":"04A2","action":"auth"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, out)

	f.post(t, "/", `{"UID":"04A2","action":"auth"}`)
	f.post(t, "/", `{"UID":"0BEE","action":"auth"}`)
	assert.Equal(t, []string{"04A2", "0BEE"}, f.server.Active().UIDs())

	resp, err := http.Get(f.http.URL + "/uids/count")
	require.NoError(t, err)
	defer resp.Body.Close()
	var count map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&count))
	assert.Equal(t, 2, count["Count"])

	assert.Empty(t, f.up.received(), "auth is handled locally")
}

func TestCheckForwardsAndProvisions(t *testing.T) {
	f := newFixture(t, `{"State":6,"Username":"alice","Password":"hunter2","Pin":"1234"}`)

	status, out := f.post(t, "/", `{"UID":"04A2","action":"check"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(6), out["State"])
	assert.Equal(t, "alice", out["Username"])
	assert.Equal(t, "1234", out["Pin"])

	got := f.up.received()
	require.Len(t, got, 1)
	assert.Equal(t, map[string]interface{}{"NFC_Code": "04A2", "State": float64(1)}, got[0])
	assert.Equal(t, [][2]string{{"alice", "hunter2"}}, f.prov.calls())
}

func TestCheckUnknownDoesNotProvision(t *testing.T) {
	f := newFixture(t, `{"State":7}`)

	_, out := f.post(t, "/", `{"UID":"04A2","action":"check"}`)

	assert.Equal(t, map[string]interface{}{"State": float64(7)}, out)
	assert.Empty(t, f.prov.calls())
}

func TestRegisterForwards(t *testing.T) {
	f := newFixture(t, `{"State":3}`)

	_, out := f.post(t, "/", `{"UID":"04A2","action":"register","Username":"carol","Password":"pw","Pin":4321}`)

	assert.Equal(t, float64(3), out["State"])
	got := f.up.received()
	require.Len(t, got, 1)
	assert.Equal(t, map[string]interface{}{
		"NFC_Code": "04A2",
		"State":    float64(2),
		"Username": "carol",
		"Password": "pw",
		"Pin":      "4321",
	}, got[0])
	assert.Equal(t, [][2]string{{"carol", "pw"}}, f.prov.calls())
}

func TestChangePasswordForwards(t *testing.T) {
	f := newFixture(t, `{"State":3}`)

	_, out := f.post(t, "/", `{"UID":"04A2","action":"change_password","Username":"alice","OldPassword":"old","Password":"new"}`)

	assert.Equal(t, float64(3), out["State"])
	got := f.up.received()
	require.Len(t, got, 1)
	assert.Equal(t, map[string]interface{}{
		"NFC_Code":    "04A2",
		"State":       float64(18),
		"OldPassword": "old",
		"Password":    "new",
	}, got[0])
	assert.Equal(t, [][2]string{{"alice", "new"}}, f.prov.calls())
}

func TestChangePasswordFailureDoesNotProvision(t *testing.T) {
	f := newFixture(t, `{"State":17}`)

	f.post(t, "/", `{"UID":"04A2","action":"change_password","Username":"alice","OldPassword":"old","Password":"new"}`)

	assert.Empty(t, f.prov.calls())
}

func TestUpstreamFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		f := newFixture(t, `<html>oops</html>`)
		f.up.mu.Lock()
		f.up.status = http.StatusBadGateway
		f.up.mu.Unlock()

		status, out := f.post(t, "/", `{"UID":"04A2","action":"check"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(0), out["State"])
	})

	t.Run("connection refused", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		s, err := New(Config{UpstreamURL: dead.URL})
		require.NoError(t, err)
		ts := httptest.NewServer(s.Handler())
		defer ts.Close()

		f := &fixture{server: s, http: ts}
		_, out := f.post(t, "/", `{"UID":"04A2","action":"check"}`)
		assert.Equal(t, float64(-1), out["State"])
	})
}

type fakeReader struct{ uid string }

func (r fakeReader) Present(ctx context.Context) (string, error) { return r.uid, nil }

func TestCheckWithoutCardOnReader(t *testing.T) {
	f := newFixture(t, `{"State":6}`, WithReader(fakeReader{}))

	status, out := f.post(t, "/", `{"UID":"alice","action":"check"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(-2), out["State"])
	assert.Equal(t, manualLoginInfo, out["Info"])
	assert.Empty(t, f.up.received())
}

func TestCheckWithCardOnReader(t *testing.T) {
	f := newFixture(t, `{"State":7}`, WithReader(fakeReader{uid: "04A2"}))

	_, out := f.post(t, "/", `{"UID":"04A2","action":"check"}`)

	assert.Equal(t, float64(7), out["State"])
	assert.Len(t, f.up.received(), 1)
}

func TestNewRequiresUpstream(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCardFeed(t *testing.T) {
	f := newFixture(t, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws/cards"
	events := Subscribe(ctx, url)

	require.Eventually(t, func() bool { return f.server.hub.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	status, _ := f.post(t, "/cards", `{"UID":"04A224B2"}`)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, CardEvent{UID: "04A224B2"}, next(t, events))

	f.post(t, "/", `{"UID":"04A2","action":"auth"}`)
	ev := next(t, events)
	require.NotNil(t, ev.Count)
	assert.Equal(t, 1, *ev.Count)
}

func TestCardWithoutUID(t *testing.T) {
	f := newFixture(t, `{}`)

	status, _ := f.post(t, "/cards", `{}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func next(t *testing.T, events <-chan CardEvent) CardEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no card event")
		return CardEvent{}
	}
}

func TestRunAndShutdown(t *testing.T) {
	s, err := New(Config{UpstreamURL: "http://127.0.0.1:1/", Listen: "127.0.0.1:0"})
	require.NoError(t, err)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr().String() + "/uids/count")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
