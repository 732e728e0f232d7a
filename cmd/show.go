package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newShowCmd creates the show command.
func newShowCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <ticket-id>",
		Short: "Show a ticket",
		Long: `Show a ticket's fields, its parents, and a table of its direct
children. The child table columns come from the ticket type's
table_columns configuration.

Examples:
  subtick show 12
  subtick show 12 --json`,
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

			parents, err := app.Engine.Parents(ctx, id)
			if err != nil {
				return err
			}

			childIDs, err := app.Engine.Children(ctx, id, 0)
			if err != nil {
				return err
			}
			var children []*ticket.Ticket
			for childID := range childIDs {
				child, err := app.Tickets.Get(ctx, childID)
				if err != nil {
					// The parents text may hold ids of deleted tickets.
					continue
				}
				children = append(children, child)
			}
			sortTickets(children)

			comments, err := app.Tickets.Comments(ctx, id)
			if err != nil {
				return err
			}

			if app.JSON {
				return app.OutputJSON(map[string]interface{}{
					"ticket":   t,
					"parents":  parents,
					"children": children,
					"comments": comments,
				})
			}

			fmt.Fprintf(app.Out, "#%d: %s\n", t.ID, t.Summary)
			fmt.Fprintf(app.Out, "Type:     %s\n", t.Type)
			fmt.Fprintf(app.Out, "Status:   %s\n", t.Status)
			if t.Priority != "" {
				fmt.Fprintf(app.Out, "Priority: %s\n", t.Priority)
			}
			if t.Owner != "" {
				fmt.Fprintf(app.Out, "Owner:    %s\n", t.Owner)
			}
			if t.Reporter != "" {
				fmt.Fprintf(app.Out, "Reporter: %s\n", t.Reporter)
			}
			if len(parents) > 0 {
				fmt.Fprintf(app.Out, "Parents:  %s\n", formatRefs(parents))
			}
			if t.Description != "" {
				fmt.Fprintf(app.Out, "\n%s\n", t.Description)
			}

			if len(children) > 0 {
				columns := app.Config.TypeConfig(t.Type).TableColumns
				fmt.Fprintf(app.Out, "\nSubtickets:\n")
				printChildTable(app, children, columns)
			}

			if len(comments) > 0 {
				fmt.Fprintf(app.Out, "\nComments:\n")
				for _, c := range comments {
					fmt.Fprintf(app.Out, "  [%s] %s: %s\n",
						c.CreatedAt.Format("2006-01-02 15:04"), c.Author, c.Text)
				}
			}

			return nil
		},
	}

	return cmd
}

// printChildTable renders the direct children with the configured
// columns.
func printChildTable(app *App, children []*ticket.Ticket, columns []string) {
	w := tabwriter.NewWriter(app.Out, 2, 4, 2, ' ', 0)

	header := append([]string{"id", "summary"}, columns...)
	fmt.Fprintln(w, "  "+strings.Join(header, "\t"))

	for _, child := range children {
		row := []string{fmt.Sprintf("#%d", child.ID), child.Summary}
		for _, col := range columns {
			row = append(row, columnValue(child, col))
		}
		fmt.Fprintln(w, "  "+strings.Join(row, "\t"))
	}
	w.Flush()
}

func columnValue(t *ticket.Ticket, column string) string {
	switch column {
	case "status":
		return string(t.Status)
	case "owner":
		return t.Owner
	case "priority":
		return t.Priority
	case "type":
		return t.Type
	case "reporter":
		return t.Reporter
	default:
		return ""
	}
}

// formatRefs renders ticket ids as #-prefixed references.
func formatRefs(ids []int) string {
	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(refs, ", ")
}

func sortTickets(tickets []*ticket.Ticket) {
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
}
