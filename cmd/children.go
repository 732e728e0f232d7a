package cmd

import (
	"context"
	"fmt"
	"sort"

	"subtick/internal/subtickets"

	"github.com/spf13/cobra"
)

// TreeNode represents a ticket and its descendants for JSON output.
type TreeNode struct {
	ID       int         `json:"id"`
	Summary  string      `json:"summary,omitempty"`
	Status   string      `json:"status,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// newChildrenCmd creates the children command.
func newChildrenCmd(provider *AppProvider) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "children <ticket-id>",
		Short: "List descendants of a ticket",
		Long: `List the descendants of a ticket as a tree.

--depth limits recursion below the direct children: -1 is unbounded,
0 shows direct children only. The default comes from the
recursion_depth configuration.

Examples:
  subtick children 12
  subtick children 12 --depth 0
  subtick children 12 --json`,
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

			maxDepth := depth
			if !cmd.Flags().Changed("depth") {
				maxDepth = app.Config.RecursionDepth
			}

			tree, err := app.Engine.Children(ctx, id, maxDepth)
			if err != nil {
				return err
			}

			if app.JSON {
				nodes, err := buildNodes(ctx, app, tree)
				if err != nil {
					return err
				}
				return app.OutputJSON(nodes)
			}

			if len(tree) == 0 {
				fmt.Fprintf(app.Out, "No subtickets for #%d\n", id)
				return nil
			}

			return printTree(ctx, app, tree, 0)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", -1, "Recursion depth (-1 unbounded, 0 direct children only)")

	return cmd
}

// printTree prints descendants depth-first, ids ascending per level.
func printTree(ctx context.Context, app *App, tree subtickets.Tree, depth int) error {
	for _, id := range sortedKeys(tree) {
		indent := ""
		for i := 0; i < depth; i++ {
			indent += "  "
		}
		prefix := ""
		if depth > 0 {
			prefix = "└─ "
		}

		label := fmt.Sprintf("#%d", id)
		if t, err := app.Tickets.Get(ctx, id); err == nil {
			label = fmt.Sprintf("#%d [%s] %s", t.ID, t.Status, t.Summary)
		}
		fmt.Fprintf(app.Out, "%s%s%s\n", indent, prefix, label)

		if err := printTree(ctx, app, tree[id], depth+1); err != nil {
			return err
		}
	}
	return nil
}

// buildNodes converts a descendant tree into JSON nodes, enriched with
// summary and status where the ticket still exists.
func buildNodes(ctx context.Context, app *App, tree subtickets.Tree) ([]*TreeNode, error) {
	var nodes []*TreeNode
	for _, id := range sortedKeys(tree) {
		node := &TreeNode{ID: id}
		if t, err := app.Tickets.Get(ctx, id); err == nil {
			node.Summary = t.Summary
			node.Status = string(t.Status)
		}
		children, err := buildNodes(ctx, app, tree[id])
		if err != nil {
			return nil, err
		}
		node.Children = children
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func sortedKeys(tree subtickets.Tree) []int {
	keys := make([]int, 0, len(tree))
	for id := range tree {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys
}
