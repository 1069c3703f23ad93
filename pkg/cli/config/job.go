package config

import (
	"log/slog"
	"time"
	_ "time/tzdata"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/usecase"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	DefaultTimezone    = "America/Sao_Paulo"
	DefaultJobInterval = time.Hour
)

// Job holds CLI flags for the due-soon routine
type Job struct {
	timezone            string
	concurrency         int
	jobTimeout          time.Duration
	interval            time.Duration
	configPath          string
	disableAutoDelivery bool
}

// Flags returns CLI flags for the due-soon routine
func (x *Job) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "timezone",
			Usage:       "IANA time zone used for message times and the daily dedup bucket",
			Category:    "Job",
			Value:       DefaultTimezone,
			Sources:     cli.EnvVars("DUESOON_TIMEZONE"),
			Destination: &x.timezone,
		},
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum recipients processed concurrently for one work item",
			Category:    "Job",
			Value:       usecase.DefaultConcurrency,
			Sources:     cli.EnvVars("DUESOON_CONCURRENCY"),
			Destination: &x.concurrency,
		},
		&cli.DurationFlag{
			Name:        "job-timeout",
			Usage:       "Maximum duration of one due-soon cycle",
			Category:    "Job",
			Value:       usecase.DefaultJobTimeout,
			Sources:     cli.EnvVars("DUESOON_JOB_TIMEOUT"),
			Destination: &x.jobTimeout,
		},
		&cli.DurationFlag{
			Name:        "job-interval",
			Usage:       "Interval of the in-process scheduler of serve (0 disables it)",
			Category:    "Job",
			Value:       DefaultJobInterval,
			Sources:     cli.EnvVars("DUESOON_JOB_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML file overriding labels and profiles",
			Category:    "Job",
			Sources:     cli.EnvVars("DUESOON_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.BoolFlag{
			Name:        "disable-auto-delivery",
			Usage:       "Do not deliver notifications right after they are created",
			Category:    "Job",
			Sources:     cli.EnvVars("DUESOON_DISABLE_AUTO_DELIVERY"),
			Destination: &x.disableAutoDelivery,
		},
	}
}

func (x Job) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("timezone", x.timezone),
		slog.Int("concurrency", x.concurrency),
		slog.Duration("job_timeout", x.jobTimeout),
		slog.Duration("interval", x.interval),
		slog.String("config", x.configPath),
		slog.Bool("disable_auto_delivery", x.disableAutoDelivery),
	)
}

// Interval returns the scheduler interval of serve
func (x *Job) Interval() time.Duration {
	return x.interval
}

// Location loads the configured time zone
func (x *Job) Location() (*time.Location, error) {
	if x.timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(x.timezone)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidTimezone, err.Error(), goerr.V("timezone", x.timezone))
	}
	return loc, nil
}

// Configure builds use case options for the due-soon routine, loading the
// TOML file when one is set
func (x *Job) Configure() ([]usecase.Option, error) {
	loc, err := x.Location()
	if err != nil {
		return nil, err
	}

	appCfg := &AppConfig{}
	if x.configPath != "" {
		appCfg, err = LoadAppConfig(x.configPath)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Loaded configuration", "path", x.configPath, "profiles", len(appCfg.Profiles))
	}

	profiles, err := appCfg.ProfileRegistry(loc)
	if err != nil {
		return nil, err
	}

	opts := []usecase.Option{
		usecase.WithLocation(loc),
		usecase.WithLabelTable(appCfg.LabelTable()),
		usecase.WithProfiles(profiles),
		usecase.WithConcurrency(x.concurrency),
		usecase.WithJobTimeout(x.jobTimeout),
	}
	if x.disableAutoDelivery {
		opts = append(opts, usecase.WithDeliveryTrigger(usecase.NoopDeliveryTrigger{}))
	}

	return opts, nil
}
