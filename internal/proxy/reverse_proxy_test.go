package proxy

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marimo-hub-be/internal/pkg/logger"
	"marimo-hub-be/internal/pkg/serverutils"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxyApp(t *testing.T, target string, timeout time.Duration) *fiber.App {
	t.Helper()
	log := logger.NewNopLogger()
	p, err := NewReverseProxy(target, timeout, log)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(log)})
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	app.All("/ui/*", p.Handler(NewWebSocketBridge(p, log).Handler()))
	return app
}

func TestReverseProxy_Passthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/kernel", r.URL.Path)
		assert.Equal(t, "session=1", r.URL.RawQuery)
		assert.Equal(t, "yes", r.Header.Get("X-Client"))
		assert.Empty(t, r.Header.Get("Proxy-Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"run":true}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "marimo")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	app := newProxyApp(t, upstream.URL, time.Second)

	req := httptest.NewRequest("POST", "/ui/api/kernel?session=1", strings.NewReader(`{"run":true}`))
	req.Header.Set("X-Client", "yes")
	req.Header.Set("Proxy-Authorization", "secret")
	resp, err := app.Test(req, 2000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "marimo", resp.Header.Get("X-Upstream"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestReverseProxy_RedirectStaysUnderMount(t *testing.T) {
	var upstreamURL string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			w.Header().Set("Location", "/auth/login?next=%2F")
		case "/absolute":
			w.Header().Set("Location", upstreamURL+"/files/a.py")
		case "/external":
			w.Header().Set("Location", "https://marimo.io/docs")
		case "/relative":
			w.Header().Set("Location", "next")
		}
		w.WriteHeader(http.StatusFound)
	}))
	defer upstream.Close()
	upstreamURL = upstream.URL

	app := newProxyApp(t, upstream.URL, time.Second)

	tests := []struct {
		path     string
		location string
	}{
		{"/ui/login", "/ui/auth/login?next=%2F"},
		{"/ui/absolute", "/ui/files/a.py"},
		{"/ui/external", "https://marimo.io/docs"},
		{"/ui/relative", "next"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), 2000)
			require.NoError(t, err)
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestReverseProxy_UpstreamDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	app := newProxyApp(t, "http://"+addr, time.Second)
	resp, err := app.Test(httptest.NewRequest("GET", "/ui/", nil), 2000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "upstream unavailable")
}

func TestReverseProxy_UpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()

	app := newProxyApp(t, upstream.URL, 100*time.Millisecond)
	resp, err := app.Test(httptest.NewRequest("GET", "/ui/slow", nil), 3000)
	require.NoError(t, err)

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "upstream timeout")
}

func TestClassify(t *testing.T) {
	code, msg := classify(errors.New("malformed response"))
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "proxy error: malformed response", msg)

	code, _ = classify(&net.OpError{Op: "dial", Err: errors.New("no route")})
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestNewReverseProxy_RejectsBadScheme(t *testing.T) {
	_, err := NewReverseProxy("ftp://runtime", 0, logger.NewNopLogger())
	assert.Error(t, err)

	p, err := NewReverseProxy("http://127.0.0.1:2718/", 0, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:2718", p.Target())
	assert.Equal(t, DefaultTimeout, p.timeout)
}

func TestWebSocketBridge_Relays(t *testing.T) {
	upgrader := fws.Upgrader{}
	gotPath := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.Path + "?" + r.URL.RawQuery
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, append([]byte("echo:"), msg...)); err != nil {
				return
			}
		}
	}))
	defer upstream.Close()

	app := newProxyApp(t, upstream.URL, time.Second)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.Shutdown() }()

	client, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ui/ws?session_id=s1", nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteMessage(fws.TextMessage, []byte("hi")))
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	mt, msg, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, fws.TextMessage, mt)
	assert.Equal(t, "echo:hi", string(msg))
	assert.Equal(t, "/ws?session_id=s1", <-gotPath)
}
