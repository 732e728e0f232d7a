package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newParentsCmd creates the parents command.
func newParentsCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parents <ticket-id>",
		Short: "List direct parents of a ticket",
		Long: `List the direct parents of a ticket, read from its parents field.

A parent that was deleted still appears here until the ticket's
parents field is edited.

Examples:
  subtick parents 12`,
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

			parents, err := app.Engine.Parents(ctx, id)
			if err != nil {
				return fmt.Errorf("listing parents of #%d: %w", id, err)
			}

			if app.JSON {
				if parents == nil {
					parents = []int{}
				}
				return app.OutputJSON(parents)
			}

			if len(parents) == 0 {
				fmt.Fprintf(app.Out, "No parents for #%d\n", id)
				return nil
			}

			for _, pid := range parents {
				label := fmt.Sprintf("#%d", pid)
				if t, err := app.Tickets.Get(ctx, pid); err == nil {
					label = fmt.Sprintf("#%d [%s] %s", t.ID, t.Status, t.Summary)
				}
				fmt.Fprintln(app.Out, label)
			}
			return nil
		},
	}

	return cmd
}
