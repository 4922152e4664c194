// Package runtime starts the marimo editor for the most recently saved
// notebook and waits until it answers HTTP.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"marimo-hub-be/internal/config"
	"marimo-hub-be/internal/pkg/apperror"
	"marimo-hub-be/internal/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/valyala/fasthttp"
)

var ErrNotReady = apperror.ErrRuntimeNotReady

const probeTimeout = 2 * time.Second

type Status struct {
	Enabled  bool   `json:"enabled"`
	Running  bool   `json:"running"`
	Ready    bool   `json:"ready"`
	Pid      int    `json:"pid,omitempty"`
	Notebook string `json:"notebook,omitempty"`
	URL      string `json:"url"`
}

type Launcher interface {
	// Launch replaces the running runtime with one serving notebookPath and
	// blocks until it is reachable or the ready timeout passes.
	Launch(ctx context.Context, notebookPath string) error
	Stop() error
	Status() Status
}

type ProbeFunc func(ctx context.Context, url string) error

type Option func(*ProcessLauncher)

func WithStarter(s ProcessStarter) Option {
	return func(l *ProcessLauncher) { l.starter = s }
}

func WithProbe(p ProbeFunc) Option {
	return func(l *ProcessLauncher) { l.probe = p }
}

type ProcessLauncher struct {
	python       string
	url          string
	host         string
	port         string
	readyTimeout time.Duration
	output       io.Writer
	starter      ProcessStarter
	probe        ProbeFunc
	logger       logger.ILogger

	// launchMu serializes Launch; mu guards the fields below it.
	launchMu sync.Mutex
	mu       sync.Mutex
	proc     Process
	notebook string
	ready    bool
}

var _ Launcher = (*ProcessLauncher)(nil)

// New returns a process launcher when autostart is on, otherwise a launcher
// that does nothing.
func New(cfg config.RuntimeConfig, log logger.ILogger, opts ...Option) (Launcher, error) {
	if !cfg.Autostart {
		return NewNopLauncher(cfg.URL), nil
	}
	return NewProcessLauncher(cfg, logger.NewRotatingWriter(cfg.LogFilePath), log, opts...)
}

func NewProcessLauncher(cfg config.RuntimeConfig, output io.Writer, log logger.ILogger, opts ...Option) (*ProcessLauncher, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse runtime url: %w", err)
	}
	port := u.Port()
	if port == "" {
		return nil, fmt.Errorf("runtime url %q has no port", cfg.URL)
	}

	l := &ProcessLauncher{
		python:       cfg.Python,
		url:          cfg.URL,
		host:         u.Hostname(),
		port:         port,
		readyTimeout: cfg.ReadyTimeout,
		output:       output,
		starter:      ExecStarter(),
		probe:        HTTPProbe,
		logger:       log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Args is the marimo command line for notebookPath.
func (l *ProcessLauncher) Args(notebookPath string) []string {
	return []string{
		"-m", "marimo", "edit",
		"--host", l.host,
		"--port", l.port,
		"--headless",
		"--no-token",
		"--allow-origins", "*",
		notebookPath,
	}
}

func (l *ProcessLauncher) Launch(ctx context.Context, notebookPath string) error {
	l.launchMu.Lock()
	defer l.launchMu.Unlock()

	l.mu.Lock()
	if err := l.stopLocked(); err != nil {
		l.logger.Warn("RUNTIME", "Failed to stop previous runtime", map[string]interface{}{"error": err.Error()})
	}

	proc, err := l.starter.Start(l.python, l.Args(notebookPath), l.output)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("start runtime: %w", err)
	}
	l.proc = proc
	l.notebook = notebookPath
	l.mu.Unlock()

	l.logger.Info("RUNTIME", "Runtime started", map[string]interface{}{
		"pid":      proc.Pid(),
		"notebook": notebookPath,
	})

	// Status and Stop stay responsive while the probe runs.
	if err := l.waitReady(ctx); err != nil {
		l.logger.Warn("RUNTIME", "Runtime did not become ready", map[string]interface{}{
			"url":     l.url,
			"timeout": l.readyTimeout.String(),
			"error":   err.Error(),
		})
		return apperror.Wrap(ErrNotReady, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.proc != proc {
		return apperror.Wrap(ErrNotReady, errors.New("runtime stopped while starting"))
	}
	l.ready = true
	return nil
}

func (l *ProcessLauncher) waitReady(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, l.probe(ctx, l.url)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(l.readyTimeout))
	return err
}

func (l *ProcessLauncher) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *ProcessLauncher) stopLocked() error {
	if l.proc == nil {
		return nil
	}
	proc := l.proc
	l.proc = nil
	l.ready = false

	l.logger.Info("RUNTIME", "Stopping runtime", map[string]interface{}{"pid": proc.Pid()})
	return proc.Stop()
}

func (l *ProcessLauncher) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Status{Enabled: true, URL: l.url, Notebook: l.notebook, Ready: l.ready}
	if l.proc != nil {
		s.Running = true
		s.Pid = l.proc.Pid()
	}
	return s
}

// HTTPProbe succeeds once url answers with any non-5xx status.
func HTTPProbe(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return backoff.Permanent(err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if err := fasthttp.DoTimeout(req, resp, probeTimeout); err != nil {
		return err
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		return fmt.Errorf("runtime answered %d", resp.StatusCode())
	}
	return nil
}

// NopLauncher is used when the runtime is managed outside this process.
type NopLauncher struct {
	url string
}

func NewNopLauncher(url string) *NopLauncher {
	return &NopLauncher{url: url}
}

func (n *NopLauncher) Launch(context.Context, string) error { return nil }

func (n *NopLauncher) Stop() error { return nil }

func (n *NopLauncher) Status() Status {
	return Status{Enabled: false, URL: n.url}
}
