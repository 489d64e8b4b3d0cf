package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	DEFAULT_READ_TIMEOUT  = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT = DEFAULT_READ_TIMEOUT
)

// Server wraps http.Server to support graceful shutdown. On SIGTERM/SIGINT the
// registered shutdown hooks run first (stopping the scan loop, releasing GPIO)
// and the HTTP server drains afterwards.
type Server struct {
	*http.Server

	listener     net.Listener
	signalChan   chan os.Signal
	shutdownChan chan struct{}
	hooks        []func()
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// OnShutdown registers a hook that runs before the HTTP server drains.
func (srv *Server) OnShutdown(fn func()) {
	srv.hooks = append(srv.hooks, fn)
}

// ListenAndServe starts serving on tcp and handles signals.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	srv.listener = ln
	return srv.serve()
}

func (srv *Server) serve() error {
	go srv.handleSignals()
	err := srv.Server.Serve(srv.listener)
	// Wait until Shutdown finished
	<-srv.shutdownChan
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (srv *Server) handleSignals() {
	signal.Notify(
		srv.signalChan,
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	sig := <-srv.signalChan
	Sugar.Infof("received %s, graceful shutting down", sig)

	for _, fn := range srv.hooks {
		fn()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown success")
	}
	close(srv.shutdownChan)
}

// GraceServer starts an HTTP server with graceful capabilities. Hooks run on shutdown
// before the listener drains.
func GraceServer(addr string, handler http.Handler, hooks ...func()) error {
	srv := NewServer(addr, handler, DEFAULT_READ_TIMEOUT, DEFAULT_WRITE_TIMEOUT)
	for _, fn := range hooks {
		srv.OnShutdown(fn)
	}
	return srv.ListenAndServe()
}
