package expressd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	expressopts "github.com/kart-io/express-plugin/pkg/options/express"
	"github.com/kart-io/express-plugin/pkg/plugin/express/expresstest"
	"github.com/kart-io/express-plugin/pkg/response"
)

func testOptions(t *testing.T) *Options {
	t.Helper()
	t.Setenv("PORT", "0")
	opts := NewOptions()
	opts.Express.ApplyOptions(
		expressopts.WithHost("127.0.0.1"),
		expressopts.WithMode(expressopts.ModeTest),
		expressopts.WithShutdownTimeout(2*time.Second),
	)
	return opts
}

func startServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(context.Background(), testOptions(t), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	require.NotNil(t, srv.Addr())
	return srv
}

func get(t *testing.T, srv *Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get("http://" + srv.Addr().String() + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServerEndpoints(t *testing.T) {
	srv := startServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/hello", status: http.StatusOK},
		{path: "/live", status: http.StatusOK},
		{path: "/ready", status: http.StatusOK},
		{path: "/version", status: http.StatusOK},
		{path: "/metrics", status: http.StatusOK},
		{path: "/missing", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := get(t, srv, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestHelloCarriesRequestID(t *testing.T) {
	srv := startServer(t)

	resp, body := get(t, srv, "/hello")
	var out response.Response
	require.NoError(t, json.Unmarshal(body, &out))

	id := resp.Header.Get("X-Request-ID")
	assert.Equal(t, id, out.RequestID)
	data, ok := out.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, id, data["request_id"])
	assert.Equal(t, "Hello from express-server!", data["message"])
}

func TestReadinessCheck(t *testing.T) {
	srv := startServer(t)
	srv.Health().AddReadinessCheck("dependency", func() error { return errors.New("down") })

	resp, _ := get(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestShutdownClosesListener(t *testing.T) {
	srv := startServer(t)
	addr := srv.Addr().String()

	require.NoError(t, srv.Shutdown(context.Background()))
	<-srv.Done()

	_, err := net.Dial("tcp", addr)
	assert.Error(t, err)
}

func TestNewServerListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	opts := testOptions(t)
	t.Setenv("PORT", portOf(t, ln.Addr()))

	_, err = NewServer(context.Background(), opts, prometheus.NewRegistry())
	require.Error(t, err)
	assert.ErrorContains(t, err, "listen on")
}

func TestRunStopsOnCancel(t *testing.T) {
	opts := testOptions(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, opts) }()

	// Give the server a moment to start before cancelling.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReturnsWhenStartIsVetoed(t *testing.T) {
	opts := testOptions(t)
	vetoer := expresstest.New(expresstest.WithName("vetoer"), expresstest.WithStopOnPostInit())

	errCh := make(chan error, 1)
	go func() { errCh <- Run(context.Background(), opts, vetoer) }()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the start was vetoed")
	}
	assert.Equal(t, 1, vetoer.PostInitExpressCalls())
}

func TestRunReturnsWhenPluginStopsServer(t *testing.T) {
	opts := testOptions(t)
	stopper := expresstest.New(expresstest.WithName("stopper"))

	errCh := make(chan error, 1)
	go func() { errCh <- Run(context.Background(), opts, stopper) }()

	require.Eventually(t, stopper.PostInitExpressCalled, 5*time.Second, 10*time.Millisecond)
	stopper.StopExpressServer()()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after a plugin stopped the server")
	}
}

func portOf(t *testing.T, addr net.Addr) string {
	t.Helper()
	_, port, err := net.SplitHostPort(addr.String())
	require.NoError(t, err)
	return port
}
