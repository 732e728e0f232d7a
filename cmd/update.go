package cmd

import (
	"fmt"

	"subtick/internal/subtickets"

	"github.com/spf13/cobra"
)

// newUpdateCmd creates the update command.
func newUpdateCmd(provider *AppProvider) *cobra.Command {
	var (
		summary     string
		description string
		priority    string
		typeFlag    string
		owner       string
		parents     string
	)

	cmd := &cobra.Command{
		Use:   "update <ticket-id>",
		Short: "Update an existing ticket",
		Long: `Update fields of an existing ticket.

Changing --parents revalidates the parent list and synchronizes the
relationship table: removed parents lose the edge, added parents gain
one, and each affected parent gets a comment and a notification.

Examples:
  subtick update 12 --summary "New summary"
  subtick update 12 --parents "3, 4"
  subtick update 12 --parents ""       # detach from all parents
  subtick update 12 --owner alice`,
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
				return fmt.Errorf("getting ticket #%d: %w", id, err)
			}

			oldParents := t.Parents
			changed := false

			if cmd.Flags().Changed("summary") {
				t.Summary = summary
				changed = true
			}
			if cmd.Flags().Changed("description") {
				t.Description = description
				changed = true
			}
			if cmd.Flags().Changed("priority") {
				t.Priority = priority
				changed = true
			}
			if cmd.Flags().Changed("type") {
				t.Type = typeFlag
				changed = true
			}
			if cmd.Flags().Changed("owner") {
				t.Owner = owner
				changed = true
			}
			if cmd.Flags().Changed("parents") {
				t.Parents = parents
				changed = true
			}

			if !changed {
				return fmt.Errorf("no changes specified")
			}

			// Every edit revalidates the parent list: the closed-parent
			// policy applies to any modification, not just parent edits.
			rejections, normalized := app.Validator.Validate(ctx, t, "")
			if len(rejections) > 0 {
				app.PrintRejections(rejections)
				return fmt.Errorf("invalid parents: %s", rejections[0].Message)
			}
			t.Parents = normalized

			if err := app.Tickets.Save(ctx, t); err != nil {
				return fmt.Errorf("updating ticket: %w", err)
			}

			oldValues := map[string]string{subtickets.FieldParents: oldParents}
			if err := app.Engine.OnChanged(ctx, t, app.Config.Actor, oldValues); err != nil {
				return fmt.Errorf("synchronizing parents: %w", err)
			}

			if app.JSON {
				return app.OutputJSON(map[string]interface{}{"id": id, "status": "updated"})
			}

			fmt.Fprintf(app.Out, "Updated #%d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "New summary")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "New type")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "New owner")
	cmd.Flags().StringVar(&parents, "parents", "", "New parent ticket ids (free-form text)")

	return cmd
}
