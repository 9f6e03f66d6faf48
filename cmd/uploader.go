package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"playstore-predictor/internal/repository"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"syscall"

	"github.com/spf13/cobra"
)

var uploaderCmd = &cobra.Command{
	Use:   "uploader",
	Short: "Consume the upload queue and store predictions",
	Run:   RunUploader,
}

func RunUploader(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, dependencyOptions{database: true, queue: queueRedis})
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.gormDB(), appDep.queue, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, appDep.validator, repo, nil)

	if err := services.Uploader.Run(ctx); err != nil {
		appDep.log.Error("Uploader stopped with error", logger.ErrorField(err))
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
