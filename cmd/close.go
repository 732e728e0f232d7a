package cmd

import (
	"fmt"

	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newCloseCmd creates the close command.
func newCloseCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <ticket-id> [ticket-id...]",
		Short: "Close one or more tickets",
		Long: `Close one or more tickets.

A ticket cannot be closed while any of its direct children is still
open, unless the resolve action is on the skip_closure_validation
list.

Examples:
  subtick close 12
  subtick close 12 15 17`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var closed []int
			var errs []error

			for _, arg := range args {
				id, err := parseTicketID(arg)
				if err != nil {
					errs = append(errs, err)
					continue
				}

				t, err := app.Tickets.Get(ctx, id)
				if err != nil {
					errs = append(errs, fmt.Errorf("closing #%d: %w", id, err))
					continue
				}

				// The status change is a save like any other, so the
				// parent list is revalidated under the resolve action.
				rejections, normalized := app.Validator.Validate(ctx, t, subtickets.ActionResolve)
				if len(rejections) > 0 {
					app.PrintRejections(rejections)
					errs = append(errs, fmt.Errorf("closing #%d: %s", id, rejections[0].Message))
					continue
				}
				t.Parents = normalized

				gating, err := app.Engine.CheckResolve(ctx, t)
				if err != nil {
					return err
				}
				if len(gating) > 0 {
					app.PrintRejections(gating)
					errs = append(errs, fmt.Errorf("closing #%d: %s", id, gating[0].Message))
					continue
				}

				t.Status = ticket.StatusClosed
				if err := app.Tickets.Save(ctx, t); err != nil {
					errs = append(errs, fmt.Errorf("closing #%d: %w", id, err))
					continue
				}
				closed = append(closed, id)
			}

			if app.JSON {
				result := map[string]interface{}{"closed": closed}
				if len(errs) > 0 {
					errStrings := make([]string, len(errs))
					for i, e := range errs {
						errStrings[i] = e.Error()
					}
					result["errors"] = errStrings
				}
				return app.OutputJSON(result)
			}

			for _, id := range closed {
				fmt.Fprintf(app.Out, "Closed #%d\n", id)
			}

			if len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(app.Err, "Error: %v\n", e)
				}
				return errs[0]
			}

			return nil
		},
	}

	return cmd
}
