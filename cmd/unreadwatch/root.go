package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "unreadwatch",
		Short: "Poll a messaging service for unread messages and notify once per change",
		Long: "unreadwatch polls a remote service for the signed-in user's unread count,\n" +
			"alerts once on first detection, and posts an in-app notification whenever\n" +
			"the count changes. Configuration comes from UNREADWATCH_* environment variables.",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newTickCmd(),
		newStatusCmd(),
		newSignInCmd(),
		newSignOutCmd(),
		newNotifyCmd(),
	)
	return root
}

// withApp wires the application for one command invocation.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
