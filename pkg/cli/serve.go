package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/cli/config"
	httpctrl "github.com/secmon-lab/duesoon/pkg/controller/http"
	"github.com/secmon-lab/duesoon/pkg/service/metrics"
	"github.com/secmon-lab/duesoon/pkg/service/worker"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/async"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var jobCfg config.Job
	var outboundCfg config.Outbound

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DUESOON_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, jobCfg.Flags()...)
	flags = append(flags, outboundCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server and the due-soon scheduler",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"repository", repoCfg,
				"job", jobCfg,
				"outbound", outboundCfg)

			m := metrics.New()
			uc, closeRepo, err := buildUseCases(ctx, &repoCfg, &jobCfg, &outboundCfg, usecase.WithMetrics(m))
			if err != nil {
				return err
			}
			defer closeRepo()
			// Deliveries dispatched by the last cycles finish before the repository closes
			defer async.Wait()

			var dueSoonWorker *worker.DueSoonWorker
			if interval := jobCfg.Interval(); interval > 0 {
				dueSoonWorker = worker.NewDueSoonWorker(uc.DueSoon, interval)
				if err := dueSoonWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start due-soon worker")
				}
			} else {
				logging.Default().Info("In-process scheduler disabled, cycles run only on request")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.DueSoon, uc.Delivery, httpctrl.WithMetrics(m)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if dueSoonWorker != nil {
					dueSoonWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if dueSoonWorker != nil {
					dueSoonWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
