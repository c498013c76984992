package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MarcoPoloResearchLab/quicknotes/internal/config"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/export"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/logging"
	"github.com/MarcoPoloResearchLab/quicknotes/internal/tui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quicknotes",
		Short: "QuickNotes terminal client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newExportCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyClientDefaults(viper.GetViper())
	defaults := config.NewClientViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("endpoint", defaults.GetString("endpoint"), "Backend service endpoint")
	cmd.PersistentFlags().String("project-id", defaults.GetString("project.id"), "Backend project identifier")
	cmd.PersistentFlags().String("database-id", defaults.GetString("database.id"), "Database holding the notes collection")
	cmd.PersistentFlags().String("notes-collection", defaults.GetString("collection.notes"), "Notes collection identifier")
	cmd.PersistentFlags().Int("http-timeout-seconds", defaults.GetInt("http.timeout_seconds"), "Backend request timeout in seconds")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-file", defaults.GetString("log.file"), "Log file path")

	bindFlag(cmd, "endpoint", "endpoint")
	bindFlag(cmd, "project.id", "project-id")
	bindFlag(cmd, "database.id", "database-id")
	bindFlag(cmd, "collection.notes", "notes-collection")
	bindFlag(cmd, "http.timeout_seconds", "http-timeout-seconds")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.file", "log-file")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

func loadClient() (config.ClientConfig, *zap.Logger, error) {
	clientConfig, err := config.LoadClient(viper.GetViper())
	if err != nil {
		return config.ClientConfig{}, nil, err
	}
	logger, err := logging.NewFileLogger(clientConfig.LogLevel, clientConfig.LogFile)
	if err != nil {
		return config.ClientConfig{}, nil, err
	}
	return clientConfig, logger, nil
}

func runInteractive(ctx context.Context) error {
	clientConfig, logger, err := loadClient()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	presenter := tui.NewPresenter()
	core, err := newClientCore(clientConfig, presenter, logger)
	if err != nil {
		return err
	}

	logger.Info("client starting", zap.String("endpoint", clientConfig.Endpoint))
	return tui.Run(signalCtx, tui.Dependencies{
		Auth:      core.auth,
		Notes:     core.notes,
		Session:   core.session,
		NoteState: core.noteState,
		Presenter: presenter,
		Logger:    logger,
	})
}

func newExportCommand() *cobra.Command {
	var (
		email    string
		password string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the account's notes as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("email and password are required")
			}
			return runExport(cmd.Context(), cmd.OutOrStdout(), afero.NewOsFs(), email, password, output)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", os.Getenv("QUICKNOTES_PASSWORD"), "Account password")
	cmd.Flags().StringVar(&output, "output", "", "Output file (default stdout)")
	return cmd
}

func runExport(ctx context.Context, stdout io.Writer, fs afero.Fs, email, password, output string) error {
	clientConfig, logger, err := loadClient()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	presenter := &alertCollector{}
	core, err := newClientCore(clientConfig, presenter, logger)
	if err != nil {
		return err
	}

	if loggedIn := core.auth.Login(ctx, strings.TrimSpace(email), password); loggedIn.IsErr() {
		return fmt.Errorf("login failed: %s", loggedIn.Message())
	}
	defer core.auth.Logout(ctx)

	if !core.notes.SessionChanged(ctx) {
		return errors.New("no active session after login")
	}
	snapshot := core.noteState.Snapshot()
	if snapshot.Error != "" {
		return fmt.Errorf("fetch notes: %s", snapshot.Error)
	}

	if output == "" {
		return export.Encode(stdout, snapshot.Notes)
	}
	if err := export.WriteFile(fs, output, snapshot.Notes); err != nil {
		return err
	}
	logger.Info("notes exported", zap.String("path", output), zap.Int("count", len(snapshot.Notes)))
	return nil
}
