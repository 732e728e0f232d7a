package cmd

import (
	"fmt"

	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newReopenCmd creates the reopen command.
func newReopenCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reopen <ticket-id>",
		Short: "Reopen a closed ticket",
		Long: `Reopen a closed ticket.

A ticket cannot be reopened while any of its parents is closed, unless
the reopen action is on the skip_closure_validation list.

Examples:
  subtick reopen 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}

			t, err := app.Tickets.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("reopening #%d: %w", id, err)
			}
			if !t.Status.Closed() {
				return fmt.Errorf("ticket #%d is not closed", id)
			}

			// The status change is a save like any other, so the parent
			// list is revalidated under the reopen action.
			rejections, normalized := app.Validator.Validate(ctx, t, subtickets.ActionReopen)
			if len(rejections) > 0 {
				app.PrintRejections(rejections)
				return fmt.Errorf("reopening #%d: %s", id, rejections[0].Message)
			}
			t.Parents = normalized

			gating, err := app.Engine.CheckReopen(ctx, t)
			if err != nil {
				return err
			}
			if len(gating) > 0 {
				app.PrintRejections(gating)
				return fmt.Errorf("reopening #%d: %s", id, gating[0].Message)
			}

			t.Status = ticket.StatusOpen
			if err := app.Tickets.Save(ctx, t); err != nil {
				return fmt.Errorf("reopening #%d: %w", id, err)
			}

			if app.JSON {
				return app.OutputJSON(map[string]interface{}{"id": id, "status": "reopened"})
			}

			fmt.Fprintf(app.Out, "Reopened #%d\n", id)
			return nil
		},
	}

	return cmd
}
