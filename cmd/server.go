package cmd

import (
	"context"
	"fmt"
	"playstore-predictor/pkg/logger"
	"time"
)

// HTTPServer runs the echo instance of an AppDependency on the given port.
// setupRoutes registers the routes before the server starts.
type HTTPServer struct {
	ctx         context.Context
	appDep      *AppDependency
	port        int
	setupRoutes func()
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, port int, setupRoutes func()) *HTTPServer {
	return &HTTPServer{
		ctx:         ctx,
		appDep:      appDep,
		port:        port,
		setupRoutes: setupRoutes,
	}
}

func (s *HTTPServer) Start() error {
	s.appDep.log.Info("Starting HTTP server", logger.IntField("port", s.port))
	address := fmt.Sprintf(":%d", s.port)

	s.setupRoutes()

	return s.appDep.echo.Start(address)
}

// Stop shuts the server down, giving in-flight requests up to ten seconds.
func (s *HTTPServer) Stop() error {
	s.appDep.log.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{})
	go func() {
		defer close(stopDone)
		if err := s.appDep.echo.Shutdown(ctx); err != nil {
			s.appDep.log.Error("Error when stopping HTTP server", logger.ErrorField(err))
		}
	}()

	select {
	case <-stopDone:
		s.appDep.log.Info("HTTP server stopped successfully")
	case <-ctx.Done():
		s.appDep.log.Warn("Timeout while stopping HTTP server, forcing shutdown")
		return s.appDep.echo.Close()
	}
	return nil
}
