package cli

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/cli/config"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdDeliver() *cli.Command {
	var id string
	var pending bool
	var since time.Duration
	var limit int
	var repoCfg config.Repository
	var jobCfg config.Job
	var outboundCfg config.Outbound

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Notification ID to deliver",
			Destination: &id,
		},
		&cli.BoolFlag{
			Name:        "pending",
			Usage:       "Retry every undelivered notification created within --since",
			Destination: &pending,
		},
		&cli.DurationFlag{
			Name:        "since",
			Usage:       "Age limit of notifications retried with --pending",
			Value:       24 * time.Hour,
			Destination: &since,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum notifications retried with --pending",
			Value:       100,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, jobCfg.Flags()...)
	flags = append(flags, outboundCfg.Flags()...)

	return &cli.Command{
		Name:  "deliver",
		Usage: "Send stored notifications to the outbound channel",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if (id == "") == !pending {
				return goerr.Wrap(ErrInvalidDeliverTarget, "exactly one of --id or --pending is required")
			}
			if !outboundCfg.IsConfigured() {
				return goerr.Wrap(usecase.ErrChannelNotConfigured, "--webhook-url is required")
			}

			uc, closeRepo, err := buildUseCases(ctx, &repoCfg, &jobCfg, &outboundCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			if id != "" {
				result, err := uc.Delivery.Deliver(ctx, model.NotificationID(id))
				if err != nil {
					return err
				}
				return printJSON(c.Root().Writer, result)
			}

			results, err := uc.Delivery.DeliverPending(ctx, time.Now().Add(-since), limit)
			if printErr := printJSON(c.Root().Writer, results); printErr != nil {
				return errors.Join(err, printErr)
			}
			if err != nil {
				logging.Default().Warn("some notifications could not be delivered", "error", err)
				return err
			}
			return nil
		},
	}
}
