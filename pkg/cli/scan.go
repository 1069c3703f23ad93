package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/cli/config"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
	"github.com/secmon-lab/duesoon/pkg/utils/async"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdScan() *cli.Command {
	var kind string
	var at string
	var repoCfg config.Repository
	var jobCfg config.Job
	var outboundCfg config.Outbound

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "kind",
			Aliases:     []string{"k"},
			Usage:       "Work item kind to scan (demonstration or service_order). All kinds when empty",
			Destination: &kind,
		},
		&cli.StringFlag{
			Name:        "at",
			Usage:       "Run as if the current time were this RFC3339 timestamp",
			Destination: &at,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, jobCfg.Flags()...)
	flags = append(flags, outboundCfg.Flags()...)

	return &cli.Command{
		Name:  "scan",
		Usage: "Run one due-soon cycle and print the reports as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return goerr.Wrap(err, "invalid --at timestamp", goerr.V("at", at))
				}
				now = t
			}

			var target types.WorkItemKind
			if kind != "" {
				k, err := types.ParseWorkItemKind(kind)
				if err != nil {
					return goerr.Wrap(err, "invalid --kind")
				}
				target = k
			}

			uc, closeRepo, err := buildUseCases(ctx, &repoCfg, &jobCfg, &outboundCfg)
			if err != nil {
				return err
			}
			defer closeRepo()
			defer async.Wait()

			var reports []*model.JobReport
			if target == "" {
				reports, err = uc.DueSoon.RunAll(ctx, now)
			} else {
				var report *model.JobReport
				if report, err = uc.DueSoon.Run(ctx, target, now); report != nil {
					reports = append(reports, report)
				}
			}
			if err != nil {
				return goerr.Wrap(err, "due-soon cycle failed")
			}

			logging.Default().Info("Scan completed", "kinds", len(reports))
			return printJSON(c.Root().Writer, reports)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}
