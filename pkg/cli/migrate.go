package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/cli/config"
	"github.com/secmon-lab/duesoon/pkg/repository/firestore"
	"github.com/secmon-lab/duesoon/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var dryRun bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview Firestore index changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate Firestore indexes or the PostgreSQL tables owned by duesoon",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := repoCfg.Validate(); err != nil {
				return err
			}

			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			case config.BackendPostgres:
				return migratePostgres(ctx, &repoCfg)
			default:
				logging.Default().Info("Nothing to migrate", "backend", repoCfg.Backend())
				return nil
			}
		},
	}
}

func migratePostgres(ctx context.Context, repoCfg *config.Repository) error {
	logger := logging.Default()

	repo, err := repoCfg.OpenPostgres(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close postgres", "error", err.Error())
		}
	}()

	logger.Info("Applying PostgreSQL schema")
	if err := repo.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply postgres schema")
	}
	logger.Info("PostgreSQL schema applied successfully")
	return nil
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	logger.Info("Migrate configuration",
		"projectID", repoCfg.ProjectID(),
		"databaseID", repoCfg.DatabaseID(),
		"collectionPrefix", repoCfg.CollectionPrefix(),
		"dryRun", dryRun)

	indexConfig := getIndexConfig(repoCfg.CollectionPrefix())

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the composite indexes required by the range queries
// of the Firestore repository
func getIndexConfig(prefix string) *fireconf.Config {
	// ListScheduled: Status ==, ScheduledAt range ordered ascending
	scheduled := fireconf.Index{
		Fields: []fireconf.IndexField{
			{Path: "Status", Order: fireconf.OrderAscending},
			{Path: "ScheduledAt", Order: fireconf.OrderAscending},
		},
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name:    firestore.CollectionName(prefix, firestore.CollectionDemonstrations),
				Indexes: []fireconf.Index{scheduled},
			},
			{
				Name:    firestore.CollectionName(prefix, firestore.CollectionServices),
				Indexes: []fireconf.Index{scheduled},
			},
			{
				Name: firestore.CollectionName(prefix, firestore.CollectionNotifications),
				Indexes: []fireconf.Index{
					// ListUndelivered: Delivered ==, CreatedAt >= ordered ascending
					{
						Fields: []fireconf.IndexField{
							{Path: "Delivered", Order: fireconf.OrderAscending},
							{Path: "CreatedAt", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
