package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"playstore-predictor/internal/delivery/http"
	"playstore-predictor/internal/realtime"
	"playstore-predictor/internal/repository"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"playstore-predictor/pkg/postgres"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the prediction page server",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, dependencyOptions{database: true})
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	cfg := appDep.cfg
	listener := postgres.NewListener(postgres.ConnString(cfg.DB), cfg.Realtime.Channel, cfg.Realtime.ReconnectMaxInterval, appDep.log)
	hub := realtime.NewHub(listener, cfg.Realtime.SubscriberBuffer, appDep.log)

	repo := repository.NewRepository(cfg, appDep.gormDB(), nil, appDep.log)
	if err := repo.PredictionAPIRepo.Ping(ctx); err != nil {
		appDep.log.Warn("Prediction service is not reachable yet", logger.ErrorField(err), logger.StringField("base_url", cfg.Predictor.BaseURL))
	}

	services := service.NewService(cfg, appDep.log, appDep.validator, repo, hub)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services, cfg, appDep.log)
	apiServer := NewHTTPServer(ctx, appDep, cfg.API.Port, httpHandler.SetupRoutes)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down gracefully...")
		err := apiServer.Stop()
		services.ViewRegistry.CloseAll()
		return err
	})

	if err := g.Wait(); err != nil {
		appDep.log.Error("Server stopped with error", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
