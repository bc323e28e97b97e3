package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/database"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/server"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
	"github.com/yasinhessnawi1/backoffice-auth/migrations"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "console",
		Usage: "maintenance commands for the backoffice auth service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "./configs/config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level for this run",
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			initCommand(),
			createAdminCommand(),
			pruneResetsCommand(),
			envCommand(),
		},
	}
}

// bootstrap loads the configuration and opens the database.
func bootstrap(c *cli.Context) (*config.AppConfig, *database.Pool, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	utils.InitLogger(cfg)
	if level := c.String("log-level"); level != "" {
		if err := utils.SetLogLevel(level); err != nil {
			return nil, nil, err
		}
	}
	utils.InitValidator()

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, db, nil
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Action: func(c *cli.Context) error {
			_, db, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer db.Close()

			return migrations.NewMigrator(db).RunMigrations(c.Context)
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "drop every table, migrate from scratch and seed the configured admin",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "allow running in production",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, db, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer db.Close()

			if cfg.App.IsProduction() && !c.Bool("force") {
				return errors.New("refusing to drop tables in production without --force")
			}

			if err := migrations.NewMigrator(db).Fresh(c.Context); err != nil {
				return err
			}

			srv, err := server.NewServerWithDB(cfg, db)
			if err != nil {
				return err
			}

			if err := srv.Seeder().SeedDatabase(c.Context, cfg); err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, "Database initialized")
			return nil
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create a back-office administrator",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Value: "Administrator"},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			cfg, db, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer db.Close()

			srv, err := server.NewServerWithDB(cfg, db)
			if err != nil {
				return err
			}

			admin, _, err := srv.Seeder().CreateAdmin(c.Context, c.String("name"), c.String("email"), c.String("password"))
			if errors.Is(err, utils.ErrDuplicateEmail) {
				return fmt.Errorf("an admin with email %s already exists", c.String("email"))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "Admin %s created with id %d\n", admin.Email, admin.ID)
			return nil
		},
	}
}

func pruneResetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune-resets",
		Usage: "delete expired password reset tickets",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "kind",
				Usage: "account kind to prune (customer or admin), repeatable; all kinds when omitted",
			},
		},
		Action: func(c *cli.Context) error {
			kinds, err := parseKinds(c.StringSlice("kind"))
			if err != nil {
				return err
			}

			cfg, db, err := bootstrap(c)
			if err != nil {
				return err
			}
			defer db.Close()

			srv, err := server.NewServerWithDB(cfg, db)
			if err != nil {
				return err
			}

			count, err := srv.PruneExpiredResets(c.Context, kinds...)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "Expired reset tokens cleared: %d\n", count)
			return nil
		},
	}
}

// parseKinds validates the --kind values before anything is opened.
func parseKinds(raw []string) ([]models.AccountKind, error) {
	kinds := make([]models.AccountKind, 0, len(raw))
	for _, value := range raw {
		kind, err := models.ParseAccountKind(value)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func envCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "list the environment variables read by the service",
		Action: func(c *cli.Context) error {
			usage, err := config.Usage()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, usage)
			return nil
		},
	}
}
