package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/portfolio/internal/auth"
	"github.com/2beens/portfolio/internal/config"
	"github.com/2beens/portfolio/internal/db"
	"github.com/2beens/portfolio/internal/logging"
	"github.com/2beens/portfolio/internal/profile"
	"github.com/2beens/portfolio/internal/projects"
	"github.com/2beens/portfolio/internal/seed"
	"github.com/2beens/portfolio/internal/settings"
	"github.com/2beens/portfolio/internal/skills"
	"github.com/2beens/portfolio/internal/testimonials"
	"github.com/2beens/portfolio/pkg"
)

const minPasswordLen = 8

type globalFlags struct {
	env        string
	configPath string
	envFile    string
	logLevel   string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "portfolio-admin",
		Short:         "Operational tasks for the portfolio backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(flags.envFile); err != nil && !os.IsNotExist(err) {
				log.Warnf("load env file %s: %s", flags.envFile, err)
			}
			logging.Setup(logging.LoggerSetupParams{
				LogToStdout: true,
				LogLevel:    flags.logLevel,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&flags.env, "env", "development", "environment [prod | production | dev | development]")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "optional dotenv file with secrets")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level")

	cmd.AddCommand(
		migrateCmd(flags),
		createAdminCmd(flags),
		setPasswordCmd(flags),
		hashPasswordCmd(),
		genSecretCmd(),
		seedCmd(flags),
	)

	return cmd
}

// openDB connects to the configured database. The caller closes the pool.
func openDB(ctx context.Context, flags *globalFlags) (*pgxpool.Pool, error) {
	cfg, err := config.Load(flags.env, flags.configPath)
	if err != nil {
		return nil, err
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("PORTFOLIO_POSTGRES_PASS"),
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return dbPool, nil
}

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dbPool, err := openDB(ctx, flags)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			return db.Migrate(ctx, dbPool)
		},
	}
}

func createAdminCmd(flags *globalFlags) *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "create-admin <username>",
		Short: "Provision an admin account, the password is read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != auth.RoleAdmin && role != auth.RoleSuperAdmin {
				return fmt.Errorf("unknown role: %s", role)
			}

			passwordHash, err := readAndHashPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dbPool, err := openDB(ctx, flags)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			admin := &auth.Admin{
				Username:     args[0],
				PasswordHash: passwordHash,
				Email:        email,
				Role:         role,
				Active:       true,
			}
			if err := auth.NewAdminRepo(dbPool).Add(ctx, admin); err != nil {
				if pkg.IsUniqueViolationError(err) {
					return fmt.Errorf("admin %s already exists, use set-password", admin.Username)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %d)\n", admin.Username, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "admin role [admin | superadmin]")

	return cmd
}

func setPasswordCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username>",
		Short: "Replace the password of an existing admin, read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passwordHash, err := readAndHashPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dbPool, err := openDB(ctx, flags)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			if err := auth.NewAdminRepo(dbPool).SetPassword(ctx, args[0], passwordHash); err != nil {
				if errors.Is(err, auth.ErrAdminNotFound) {
					return fmt.Errorf("admin %s not found", args[0])
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash of the password read from stdin, for PORTFOLIO_ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			passwordHash, err := readAndHashPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), passwordHash)
			return nil
		},
	}
}

func genSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random session secret, for PORTFOLIO_SESSION_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 32 {
				return fmt.Errorf("secret size must be at least 32 bytes, got %d", size)
			}
			secret, err := pkg.GenerateRandomString(size)
			if err != nil {
				return fmt.Errorf("generate secret: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "bytes", 48, "number of random bytes")

	return cmd
}

func seedCmd(flags *globalFlags) *cobra.Command {
	var (
		file    string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import site content from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contentFile, err := seed.Load(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			dbPool, err := openDB(ctx, flags)
			if err != nil {
				return err
			}
			defer dbPool.Close()

			seeder := seed.NewSeeder(seed.Stores{
				Profile:      profile.NewRepo(dbPool),
				Settings:     settings.NewRepo(dbPool),
				Projects:     projects.NewRepo(dbPool),
				Skills:       skills.NewRepo(dbPool),
				Testimonials: testimonials.NewRepo(dbPool),
			})
			summary, err := seeder.Import(ctx, contentFile, replace)
			if err != nil {
				return err
			}

			fmt.Fprintf(
				cmd.OutOrStdout(),
				"imported: profile=%t settings=%t projects=%d skill categories=%d testimonials=%d\n",
				summary.Profile, summary.Settings, summary.Projects, summary.SkillCategories, summary.Testimonials,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "content JSON file")
	cmd.Flags().BoolVar(&replace, "replace", false, "remove existing projects, skill categories and testimonials first")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readAndHashPassword reads the first line of r as the password.
func readAndHashPassword(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password, _, _ := strings.Cut(string(data), "\n")
	password = strings.TrimRight(password, "\r")
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters long", minPasswordLen)
	}

	return pkg.HashPassword(password)
}
