package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/people-notebook/internal/config"
	"gitlab.com/dirk.krummacker/people-notebook/internal/logging"
)

// Usage example on the command line:
// > DB_PATH=./people.db UPLOAD_DIR=./uploads LOG_FORMAT=console go run . serve
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notebook",
		Short:         "People notebook with birthday reminders",
		Long:          "A notebook about people, their pets, children and notes, with Telegram birthday reminders.\nAll settings are read from environment variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newRemindCommand())
	return cmd
}

// loadEnvironment reads the configuration and builds the logger every command starts with.
func loadEnvironment() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
