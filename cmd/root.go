// Package cmd provides the goodfoods command line. The serve command runs
// the HTTP surface; chat, ask, reservations and restaurants work directly
// against the configured database.
//
//	goodfoods serve [--env path/to/.env]
//	goodfoods chat
//	goodfoods ask "find italian for 4"
//	goodfoods reservations [--limit 20]
//	goodfoods restaurants
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/goodfoods-agent/pkg/config"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
)

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "goodfoods",
		Short: "Natural-language restaurant reservation agent",
		Long: `GoodFoods turns free text such as "book a table for 4 tomorrow at 7pm"
into searches, bookings and cancellations against the restaurant catalog
and the reservations database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configx.SetEnvFile(envFile)
			return initLogger(cmd)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path of a .env file to load")

	root.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newAskCmd(),
		newReservationsCmd(),
		newRestaurantsCmd(),
	)
	return root
}

// initLogger reapplies LOG_* once the .env file is known. Only serve logs
// to stdout; the other commands keep stdout for replies.
func initLogger(cmd *cobra.Command) error {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return err
	}
	if cmd.Name() == "serve" {
		logx.InitWriter(cmd.OutOrStdout(), *conf)
		return nil
	}
	logx.InitWriter(cmd.ErrOrStderr(), *conf)
	return nil
}
