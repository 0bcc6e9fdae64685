package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	afterId     int64
	ticketLimit int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the one-pass ticket migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// an interrupt stops between tickets; the run prints the id to
		// resume from with --after
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return client.Run(ctx, afterId, ticketLimit)
	},
}

func init() {
	migrateCmd.Flags().Int64Var(&afterId, "after", 0, "resume: only migrate tickets with id greater than this")
	migrateCmd.Flags().IntVar(&ticketLimit, "limit", 0, "stop after this many tickets (0 = no limit)")
}
