package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/cli/config"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	if err := newApp(version).Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func newApp(version string) *cli.Command {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "duesoon",
		Usage:   "Due-soon reminders for scheduled demonstrations and service orders",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			logging.Default().Info("Starting duesoon", "logger", loggerCfg, "sentry", sentryCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdScan(),
			cmdDeliver(),
			cmdMigrate(),
		},
	}
}

// buildUseCases opens the repository and wires the use cases shared by the
// commands. The returned closer releases the repository.
func buildUseCases(ctx context.Context, repoCfg *config.Repository, jobCfg *config.Job, outboundCfg *config.Outbound, extra ...usecase.Option) (*usecase.UseCases, func(), error) {
	jobOpts, err := jobCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure job")
	}
	outboundOpts, err := outboundCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure outbound channels")
	}

	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	opts := append(jobOpts, outboundOpts...)
	opts = append(opts, extra...)
	uc, err := usecase.New(repo, opts...)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to initialize use cases")
	}

	return uc, closer, nil
}
