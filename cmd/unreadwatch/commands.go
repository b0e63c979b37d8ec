package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/unreadwatch/internal/application"
)

// statusOutput is the redacted state printed by status.
type statusOutput struct {
	SignedIn    bool   `json:"signed_in"`
	Identity    string `json:"identity,omitempty"`
	HasNotified bool   `json:"has_notified"`
	UnreadCount int    `json:"unread_count"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one poll and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.agent.Tick(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), application.NewDecisionResult(result))
			})
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored notification state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				state, err := a.agent.State(ctx)
				if err != nil {
					return err
				}
				out := statusOutput{
					SignedIn:    state.SignedIn(),
					Identity:    state.Identity,
					HasNotified: state.HasNotified,
					UnreadCount: state.UnreadCount,
				}
				if !state.UpdatedAt.IsZero() {
					out.UpdatedAt = state.UpdatedAt.UTC().Format(time.RFC3339)
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func newSignInCmd() *cobra.Command {
	var apiKey, address string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Store the API key and address used to poll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.agent.SetCredentials(ctx, apiKey, address); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", address)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer token for the remote service")
	cmd.Flags().StringVar(&address, "address", "", "account address the count is looked up for")
	_ = cmd.MarkFlagRequired("api-key")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Remove stored credentials and reset notification state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.agent.RemoveCredentials(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func newNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Post the message-waiting notification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return a.agent.InAppNotify(ctx)
			})
		},
	}
}
