package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/dirk.krummacker/people-notebook/internal/notify"
	"gitlab.com/dirk.krummacker/people-notebook/internal/reminder"
	"gitlab.com/dirk.krummacker/people-notebook/internal/store"
)

func newRemindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one birthday scan and send the reminders that are due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return remind(cmd.Context(), cmd)
		},
	}
}

func remind(ctx context.Context, cmd *cobra.Command) error {
	cfg, log, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer log.Sync()

	sender, ok := notify.FromConfig(cfg)
	if !ok {
		return errors.New("telegram reminders disabled: set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := reminder.New(st, sender, reminder.Config{Location: loc}, log).Scan(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "checked %d, sent %d (7 days) and %d (1 day), failed %d, skipped %d\n",
		res.Checked, res.Sent7d, res.Sent1d, res.Failed, res.Skipped)
	return nil
}
