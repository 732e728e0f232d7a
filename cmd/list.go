package cmd

import (
	"fmt"

	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newListCmd creates the list command.
func newListCmd(provider *AppProvider) *cobra.Command {
	var (
		status   string
		typeFlag string
		owner    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Long: `List tickets, optionally filtered by status, type, or owner.

Examples:
  subtick list
  subtick list --status open
  subtick list --type bug --owner alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &ticket.ListFilter{}
			if cmd.Flags().Changed("status") {
				s := ticket.Status(status)
				filter.Status = &s
			}
			if cmd.Flags().Changed("type") {
				filter.Type = &typeFlag
			}
			if cmd.Flags().Changed("owner") {
				filter.Owner = &owner
			}

			tickets, err := app.Tickets.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("listing tickets: %w", err)
			}

			if app.JSON {
				if tickets == nil {
					tickets = []*ticket.Ticket{}
				}
				return app.OutputJSON(tickets)
			}

			if len(tickets) == 0 {
				fmt.Fprintln(app.Out, "No tickets found")
				return nil
			}

			for _, t := range tickets {
				line := fmt.Sprintf("#%d [%s] %s", t.ID, t.Status, t.Summary)
				if t.Parents != "" {
					line += fmt.Sprintf(" (parents: %s)", t.Parents)
				}
				fmt.Fprintln(app.Out, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Filter by type")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "Filter by owner")

	return cmd
}
