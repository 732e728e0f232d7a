package cmd

import (
	"context"
	"fmt"

	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newCreateCmd creates the create command.
func newCreateCmd(provider *AppProvider) *cobra.Command {
	var (
		typeFlag    string
		priority    string
		owner       string
		description string
		parents     string
	)

	cmd := &cobra.Command{
		Use:   "create <summary>",
		Short: "Create a new ticket",
		Long: `Create a new ticket with the specified summary.

The --parents value is free-form text; every run of digits in it is
read as a ticket id. The value is validated before the ticket is
created and rewritten to a canonical comma-separated list.

Examples:
  subtick create "Fix login bug"
  subtick create "Add OAuth support" --type bug --priority high
  subtick create "Implement caching" --parents "12"
  subtick create "Write tests" --parents "#12 and #15"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			t := &ticket.Ticket{
				Type:        typeFlag,
				Summary:     args[0],
				Description: description,
				Status:      ticket.StatusOpen,
				Priority:    priority,
				Owner:       owner,
				Reporter:    app.Config.Actor,
				Parents:     parents,
			}
			if t.Type == "" {
				t.Type = "task"
			}

			rejections, normalized := app.Validator.Validate(ctx, t, "")
			if len(rejections) > 0 {
				app.PrintRejections(rejections)
				return fmt.Errorf("invalid parents: %s", rejections[0].Message)
			}
			t.Parents = normalized

			if err := app.inheritFromParent(ctx, t); err != nil {
				return err
			}

			id, err := app.Tickets.Create(ctx, t)
			if err != nil {
				return fmt.Errorf("creating ticket: %w", err)
			}
			t.ID = id

			if err := app.Engine.OnCreated(ctx, t, app.Config.Actor); err != nil {
				return fmt.Errorf("linking parents: %w", err)
			}

			if app.JSON {
				return app.OutputJSON(map[string]int{"id": id})
			}

			fmt.Fprintf(app.Out, "Created ticket #%d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Ticket type (default task)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "Owner")
	cmd.Flags().StringVar(&description, "description", "", "Full description")
	cmd.Flags().StringVar(&parents, "parents", "", "Parent ticket ids (free-form text)")

	return cmd
}

// inheritFromParent copies the configured child_inherits fields from
// the first parent onto a new ticket. Only empty fields are filled so
// explicit flags always win.
func (a *App) inheritFromParent(ctx context.Context, t *ticket.Ticket) error {
	ids, err := subtickets.ParseIDs(t.Parents)
	if err != nil || len(ids) == 0 {
		return err
	}

	fields := a.Config.TypeConfig(t.Type).ChildInherits
	if len(fields) == 0 {
		return nil
	}

	parent, err := a.Tickets.Get(ctx, ids[0])
	if err != nil {
		return fmt.Errorf("loading parent #%d: %w", ids[0], err)
	}

	for _, field := range fields {
		switch field {
		case "priority":
			if t.Priority == "" {
				t.Priority = parent.Priority
			}
		case "owner":
			if t.Owner == "" {
				t.Owner = parent.Owner
			}
		case "type":
			if t.Type == "task" {
				t.Type = parent.Type
			}
		}
	}
	return nil
}
