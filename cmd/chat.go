package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const chatBanner = "GoodFoods reservation assistant. Type 'exit' to quit."

type messageHandler interface {
	HandleMessage(ctx context.Context, text string) string
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the agent line by line on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.newOrchestrator(ctx)
			if err != nil {
				return err
			}
			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), o)
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text...>",
		Short: "Handle a single message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.newOrchestrator(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), o.HandleMessage(ctx, strings.Join(args, " ")))
			return nil
		},
	}
}

// runChat answers each input line until EOF or an exit word.
func runChat(ctx context.Context, in io.Reader, out io.Writer, h messageHandler) error {
	fmt.Fprintln(out, chatBanner)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "":
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(out, h.HandleMessage(ctx, line))
	}
}
