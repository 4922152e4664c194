// Package proxy forwards /ui/* traffic to the notebook runtime.
package proxy

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"marimo-hub-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const DefaultTimeout = 30 * time.Second

// Headers that describe a single hop and must not be forwarded upstream.
var hopByHopRequest = map[string]struct{}{
	"host":                {},
	"connection":          {},
	"keep-alive":          {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
	"te":                  {},
	"trailers":            {},
	"transfer-encoding":   {},
	"upgrade":             {},
	"content-length":      {},
}

var strippedResponse = map[string]struct{}{
	"content-length":    {},
	"transfer-encoding": {},
	"connection":        {},
}

type ReverseProxy struct {
	target  *url.URL
	client  *fasthttp.Client
	timeout time.Duration
	logger  logger.ILogger
}

func NewReverseProxy(target string, timeout time.Duration, log logger.ILogger) (*ReverseProxy, error) {
	u, err := url.Parse(strings.TrimRight(target, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse runtime url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("runtime url must be http or https, got %q", target)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &ReverseProxy{
		target:  u,
		timeout: timeout,
		logger:  log,
		client: &fasthttp.Client{
			Name:                     "marimo-hub-proxy",
			NoDefaultUserAgentHeader: true,
			DisablePathNormalizing:   true,
			MaxConnsPerHost:          512,
		},
	}, nil
}

// Target returns the upstream base URL.
func (p *ReverseProxy) Target() string {
	return p.target.String()
}

// Forward sends the current request to <target>/<path>?<query> and copies
// the upstream answer back. Redirects are not followed; their Location is
// rewritten to stay under the prefix the proxy is mounted on.
func (p *ReverseProxy) Forward(ctx *fiber.Ctx, path string) error {
	ctx.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	mount := strings.TrimRight(strings.TrimSuffix(ctx.Path(), path), "/")

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := p.Target() + "/" + strings.TrimLeft(path, "/")
	if q := ctx.Request().URI().QueryString(); len(q) > 0 {
		uri += "?" + string(q)
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(ctx.Method())

	ctx.Request().Header.VisitAll(func(key, value []byte) {
		if _, skip := hopByHopRequest[strings.ToLower(string(key))]; skip {
			return
		}
		req.Header.AddBytesKV(key, value)
	})
	req.SetBody(ctx.Body())

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		code, message := classify(err)
		p.logger.Warn("PROXY", "Upstream request failed", map[string]interface{}{
			"uri":    uri,
			"status": code,
			"error":  err.Error(),
		})
		return fiber.NewError(code, message)
	}

	ctx.Status(resp.StatusCode())
	resp.Header.VisitAll(func(key, value []byte) {
		if _, skip := strippedResponse[strings.ToLower(string(key))]; skip {
			return
		}
		ctx.Response().Header.AddBytesKV(key, value)
	})
	if location := resp.Header.Peek(fiber.HeaderLocation); len(location) > 0 {
		ctx.Set(fiber.HeaderLocation, p.rewriteLocation(string(location), mount))
	}
	ctx.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	ctx.Response().SetBody(resp.Body())

	return nil
}

// Handler forwards everything matched by the route wildcard. WebSocket
// upgrades are passed to ws when it is not nil.
func (p *ReverseProxy) Handler(ws fiber.Handler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if ws != nil && isWebSocketUpgrade(ctx) {
			return ws(ctx)
		}
		return p.Forward(ctx, ctx.Params("*"))
	}
}

// rewriteLocation maps root-relative paths and absolute URLs on the runtime
// host under mount. Relative paths and foreign hosts pass through.
func (p *ReverseProxy) rewriteLocation(location, mount string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}
	if u.Scheme != "" || u.Host != "" {
		if u.Host != p.target.Host {
			return location
		}
	} else if !strings.HasPrefix(u.Path, "/") {
		return location
	}

	rest := u.EscapedPath()
	if base := p.target.EscapedPath(); base != "" && strings.HasPrefix(rest, base) {
		rest = strings.TrimPrefix(rest, base)
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	if u.RawQuery != "" {
		rest += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		rest += "#" + u.EscapedFragment()
	}
	return mount + rest
}

func classify(err error) (int, string) {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return fiber.StatusGatewayTimeout, "upstream timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fiber.StatusServiceUnavailable, "upstream unavailable"
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fiber.StatusServiceUnavailable, "upstream unavailable"
	}

	return fiber.StatusBadGateway, "proxy error: " + err.Error()
}
