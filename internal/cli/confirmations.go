package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prenaissance/steam-desktop-authenticator/internal/confirmations"
	"github.com/prenaissance/steam-desktop-authenticator/internal/steamapi"
)

func newConfirmationsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "confirmations",
		Aliases: []string{"conf"},
		Short:   "List and answer pending trade and market confirmations",
	}
	cmd.AddCommand(
		newConfirmationsListCommand(app),
		newConfirmationsDetailsCommand(app),
		newConfirmationsAcceptCommand(app),
		newConfirmationsDenyCommand(app),
	)
	return cmd
}

func newConfirmationsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending confirmations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}

			pending, err := app.confirmationDispatcher().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending confirmations.")
				return nil
			}

			for _, confirmation := range pending {
				created := time.Unix(confirmation.CreationTime, 0).Format(time.RFC3339)
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %s  %s\n",
					confirmation.ID, confirmation.Type(), created, confirmation.Headline)
				for _, line := range confirmation.Summary {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", line)
				}
			}
			return nil
		},
	}
}

func newConfirmationsDetailsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "details <id>",
		Short: "Show the rendered detail page of one confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureFreshTokens(cmd.Context()); err != nil {
				return err
			}

			ref, err := resolveRef(app, cmd, args[0])
			if err != nil {
				return err
			}
			html, err := app.confirmationDispatcher().GetDetails(cmd.Context(), ref)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}
}

func newConfirmationsAcceptCommand(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "accept [id...]",
		Short: "Accept confirmations by id, or all of them with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			return answerConfirmations(app, cmd, args, all, true)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Accept every pending confirmation")
	return cmd
}

func newConfirmationsDenyCommand(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "deny [id...]",
		Short: "Deny confirmations by id, or all of them with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			return answerConfirmations(app, cmd, args, all, false)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Deny every pending confirmation")
	return cmd
}

func answerConfirmations(app *App, cmd *cobra.Command, ids []string, all, accept bool) error {
	if !all && len(ids) == 0 {
		return fmt.Errorf("pass at least one confirmation id or --all")
	}
	if err := app.ensureFreshTokens(cmd.Context()); err != nil {
		return err
	}

	dispatcher := app.confirmationDispatcher()
	refs, err := collectRefs(app, cmd, ids, all)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do.")
		return nil
	}

	verb := "Accepted"
	if len(refs) == 1 {
		var opErr error
		if accept {
			opErr = dispatcher.Accept(cmd.Context(), refs[0])
		} else {
			opErr = dispatcher.Deny(cmd.Context(), refs[0])
			verb = "Denied"
		}
		if opErr != nil {
			return opErr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, refs[0].ID)
		return nil
	}

	var results []confirmations.BulkResult
	if accept {
		results, err = dispatcher.AcceptBulk(cmd.Context(), refs)
	} else {
		results, err = dispatcher.DenyBulk(cmd.Context(), refs)
		verb = "Denied"
	}
	if err != nil {
		return err
	}

	failures := 0
	for _, result := range results {
		if result.Err != nil {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", result.Ref.ID, result.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, result.Ref.ID)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d confirmations failed", failures, len(results))
	}
	return nil
}

// collectRefs turns the command arguments into confirmation references. The
// mobileconf ajaxop endpoints need the nonce alongside the id, so ids are
// resolved against a fresh listing.
func collectRefs(app *App, cmd *cobra.Command, ids []string, all bool) ([]steamapi.ConfirmationRef, error) {
	pending, err := app.confirmationDispatcher().List(cmd.Context())
	if err != nil {
		return nil, err
	}

	if all {
		refs := make([]steamapi.ConfirmationRef, 0, len(pending))
		for _, confirmation := range pending {
			refs = append(refs, confirmation.Ref())
		}
		return refs, nil
	}

	byID := make(map[string]steamapi.ConfirmationRef, len(pending))
	for _, confirmation := range pending {
		byID[confirmation.ID] = confirmation.Ref()
	}
	refs := make([]steamapi.ConfirmationRef, 0, len(ids))
	for _, id := range ids {
		ref, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("no pending confirmation with id %s", id)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func resolveRef(app *App, cmd *cobra.Command, id string) (steamapi.ConfirmationRef, error) {
	refs, err := collectRefs(app, cmd, []string{id}, false)
	if err != nil {
		return steamapi.ConfirmationRef{}, err
	}
	return refs[0], nil
}
