package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/smartcontractkit/chainlink-common/pkg/services"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// HTTPServer serves a handler until closed.
type HTTPServer struct {
	services.StateMachine

	name       string
	lggr       logger.Logger
	listenPort int
	handler    http.Handler

	srv  *http.Server
	addr net.Addr
	wg   sync.WaitGroup
}

// NewHTTPServer returns a server for handler on listenPort. Port 0 picks a free port.
func NewHTTPServer(lggr logger.Logger, name string, listenPort int, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		name:       name,
		lggr:       logger.Named(lggr, name),
		listenPort: listenPort,
		handler:    handler,
	}
}

func (s *HTTPServer) Start(ctx context.Context) error {
	return s.StartOnce(s.name, func() error {
		lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf(":%d", s.listenPort))
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", s.listenPort, err)
		}
		s.addr = lis.Addr()
		s.srv = &http.Server{
			Handler:           s.handler,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		s.lggr.Infow("Starting HTTP server", "addr", s.addr.String())

		s.wg.Go(func() {
			if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.lggr.Errorw("HTTP server error", "error", err)
			}
		})
		return nil
	})
}

func (s *HTTPServer) Close() error {
	return s.StopOnce(s.name, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := s.srv.Shutdown(ctx)
		s.wg.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
		s.lggr.Infow("HTTP server stopped")
		return nil
	})
}

// Addr is the bound address, nil before Start.
func (s *HTTPServer) Addr() net.Addr {
	return s.addr
}

func (s *HTTPServer) Name() string {
	return s.lggr.Name()
}

func (s *HTTPServer) HealthReport() map[string]error {
	return map[string]error{s.Name(): s.Healthy()}
}
