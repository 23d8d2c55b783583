package exporter

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, reader *fakeReader) (*Server, *Poller, *httptest.Server) {
	t.Helper()
	reg := NewRegistry()
	p := NewPoller(reader, time.Minute, NewMetrics(reg))
	s := NewServer("127.0.0.1:0", p, reg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, p, ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_HealthAndLatest(t *testing.T) {
	_, p, ts := newTestServer(t, &fakeReader{values: []int{733}})

	code, _ := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, ts.URL+"/api/latest")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	p.Poll(context.Background())

	code, _ = get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)

	code, body := get(t, ts.URL+"/api/latest")
	require.Equal(t, http.StatusOK, code)
	var got struct {
		PPM    int    `json:"ppm"`
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 733, got.PPM)
	assert.Equal(t, ResultOK, got.Result)
}

func TestServer_Metrics(t *testing.T) {
	_, p, ts := newTestServer(t, &fakeReader{values: []int{1024}})
	p.Poll(context.Background())

	code, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "mhz19_co2_ppm 1024")
	assert.Contains(t, body, `mhz19_reads_total{result="ok"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_WebSocket(t *testing.T) {
	_, p, ts := newTestServer(t, &fakeReader{values: []int{450, 460}})
	p.Poll(context.Background())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first map[string]any
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 450.0, first["ppm"], "latest sample is sent on connect")

	// Wait for the subscription to be registered before polling again
	require.Eventually(t, func() bool {
		p.mu.RLock()
		defer p.mu.RUnlock()
		return len(p.subs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	p.Poll(context.Background())

	var next map[string]any
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, 460.0, next["ppm"])
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	reg := NewRegistry()
	p := NewPoller(&fakeReader{values: []int{400}}, time.Minute, NewMetrics(reg))
	s := NewServer("127.0.0.1:0", p, reg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
