package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newDeleteCmd creates the delete command.
func newDeleteCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <ticket-id>",
		Short: "Delete a ticket",
		Long: `Delete a ticket.

Edges linking the ticket to its parents are removed with it. Edges
where the ticket is itself a parent are kept: its children still list
the id in their parents text, and views tolerate the dangling
reference.

Examples:
  subtick delete 12
  subtick delete 12 --force   # skip confirmation`,
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
				return fmt.Errorf("deleting #%d: %w", id, err)
			}

			// Confirmation prompt unless --force is used
			if !force {
				fmt.Fprintf(app.Out, "Delete ticket #%d: %s? [y/N] ", t.ID, t.Summary)

				reader := bufio.NewReader(cmd.InOrStdin())
				response, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("reading confirmation: %w", err)
				}

				response = strings.TrimSpace(strings.ToLower(response))
				if response != "y" && response != "yes" {
					fmt.Fprintln(app.Out, "Cancelled")
					return nil
				}
			}

			if err := app.Tickets.Delete(ctx, id); err != nil {
				return fmt.Errorf("deleting #%d: %w", id, err)
			}
			if err := app.Engine.OnDeleted(ctx, id); err != nil {
				return fmt.Errorf("removing edges of #%d: %w", id, err)
			}

			if app.JSON {
				return app.OutputJSON(map[string]interface{}{"id": id, "status": "deleted"})
			}

			fmt.Fprintf(app.Out, "Deleted #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
