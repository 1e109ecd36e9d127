package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cairo-thws/fedt4t/pkg/server"
)

const (
	stopWaitTime  = 5 * time.Second
	httpProtocol  = "http"
	httpsProtocol = "https"
)

type httpServer struct {
	server.BaseServer
	server *http.Server
}

var _ server.Server = (*httpServer)(nil)

func NewServer(ctx context.Context, cancel context.CancelFunc, name string, config server.Config, handler http.Handler, logger *slog.Logger) server.Server {
	baseCtx := func(_ net.Listener) context.Context {
		return ctx
	}
	listenFullAddress := fmt.Sprintf("%s:%s", config.Host, config.Port)
	hserver := &http.Server{Addr: listenFullAddress, Handler: handler, BaseContext: baseCtx}

	return &httpServer{
		BaseServer: server.BaseServer{
			Ctx:      ctx,
			Cancel:   cancel,
			Name:     name,
			Address:  listenFullAddress,
			Config:   config,
			Logger:   logger,
			Protocol: httpProtocol,
		},
		server: hserver,
	}
}

func (s *httpServer) Start() error {
	if s.Config.CertFile != "" && s.Config.KeyFile != "" {
		s.Protocol = httpsProtocol
		s.Logger.Info(fmt.Sprintf("%s service %s server listening at %s with TLS", s.Name, s.Protocol, s.Address))
		if err := s.server.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start %s server: %w", s.Name, err)
		}

		return nil
	}

	s.Logger.Info(fmt.Sprintf("%s service %s server listening at %s without TLS", s.Name, s.Protocol, s.Address))
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", s.Name, err)
	}

	return nil
}

func (s *httpServer) Stop() error {
	defer s.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), stopWaitTime)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.Logger.Error(fmt.Sprintf("%s service %s server failed to shut down gracefully", s.Name, s.Protocol), slog.Any("error", err))

		return s.server.Close()
	}
	s.Logger.Info(fmt.Sprintf("%s service %s server shutdown complete at %s", s.Name, s.Protocol, s.Address))

	return nil
}
