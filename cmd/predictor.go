package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"playstore-predictor/internal/delivery/http"
	"playstore-predictor/internal/repository"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var predictorCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Run the prediction service",
	Long: "Run the prediction service. With predictor.embedded_uploader the results are " +
		"stored by an in-process uploader, otherwise they are published to the redis upload queue.",
	Run: RunPredictor,
}

func RunPredictor(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, dependencyOptions{queue: queuePredictor})
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.gormDB(), appDep.queue, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, appDep.validator, repo, nil)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services, appDep.cfg, appDep.log)
	apiServer := NewHTTPServer(ctx, appDep, appDep.cfg.Predictor.Port, httpHandler.SetupPredictorRoutes)

	g, gctx := errgroup.WithContext(ctx)
	if services.Uploader != nil {
		appDep.log.Info("Running embedded uploader")
		g.Go(func() error {
			return services.Uploader.Run(gctx)
		})
	}
	g.Go(func() error {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return apiServer.Stop()
	})

	if err := g.Wait(); err != nil {
		appDep.log.Error("Predictor stopped with error", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
