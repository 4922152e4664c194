package proxy

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"marimo-hub-be/internal/pkg/logger"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	localsPath  = "proxy_ws_path"
	localsQuery = "proxy_ws_query"

	closeWait = time.Second
)

// WebSocketBridge relays frames between a browser socket and the runtime.
type WebSocketBridge struct {
	target string
	dialer *fws.Dialer
	logger logger.ILogger
}

func NewWebSocketBridge(p *ReverseProxy, log logger.ILogger) *WebSocketBridge {
	u := *p.target
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	return &WebSocketBridge{
		target: u.String(),
		dialer: &fws.Dialer{HandshakeTimeout: p.timeout},
		logger: log,
	}
}

func isWebSocketUpgrade(ctx *fiber.Ctx) bool {
	return websocket.IsWebSocketUpgrade(ctx)
}

// Handler upgrades the client connection and starts relaying.
func (b *WebSocketBridge) Handler() fiber.Handler {
	upgrade := websocket.New(b.serve)
	return func(ctx *fiber.Ctx) error {
		ctx.Locals(localsPath, ctx.Params("*"))
		ctx.Locals(localsQuery, string(ctx.Request().URI().QueryString()))
		return upgrade(ctx)
	}
}

func (b *WebSocketBridge) serve(client *websocket.Conn) {
	path, _ := client.Locals(localsPath).(string)
	query, _ := client.Locals(localsQuery).(string)

	uri := b.target + "/" + strings.TrimLeft(path, "/")
	if query != "" {
		uri += "?" + query
	}

	header := http.Header{}
	if cookie := client.Headers(fiber.HeaderCookie); cookie != "" {
		header.Set(fiber.HeaderCookie, cookie)
	}

	upstream, _, err := b.dialer.Dial(uri, header)
	if err != nil {
		b.logger.Warn("PROXY", "WebSocket upstream dial failed", map[string]interface{}{
			"uri":   uri,
			"error": err.Error(),
		})
		_ = client.WriteControl(fws.CloseMessage,
			fws.FormatCloseMessage(fws.CloseTryAgainLater, "upstream unavailable"),
			time.Now().Add(closeWait))
		return
	}
	defer upstream.Close()

	b.logger.Debug("PROXY", "WebSocket bridged", map[string]interface{}{"uri": uri})

	var once sync.Once
	done := make(chan struct{})
	finish := func() { once.Do(func() { close(done) }) }

	go relay(upstream, client.Conn, finish)
	go relay(client.Conn, upstream, finish)
	<-done

	deadline := time.Now().Add(closeWait)
	closeMsg := fws.FormatCloseMessage(fws.CloseNormalClosure, "")
	_ = client.WriteControl(fws.CloseMessage, closeMsg, deadline)
	_ = upstream.WriteControl(fws.CloseMessage, closeMsg, deadline)
}

// relay copies frames from src to dst until either side fails.
func relay(dst, src *fws.Conn, finish func()) {
	defer finish()
	for {
		messageType, data, err := src.ReadMessage()
		if err != nil {
			return
		}
		if err := dst.WriteMessage(messageType, data); err != nil {
			return
		}
	}
}
