package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"subtick/internal/config"
	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// newInitCmd creates the init command.
func newInitCmd(provider *AppProvider) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new subtick repository",
		Long: `Initialize a new subtick repository.

Creates a .subtick directory with the ticket database and a default
config.yaml.

Examples:
  subtick init
  subtick init ~/work/project
  subtick init --force   # reinitialize config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath := ""
			if len(args) > 0 {
				basePath = args[0]
			}
			if basePath == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting current directory: %w", err)
				}
				basePath = cwd
			}

			absPath, err := filepath.Abs(basePath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			subtickDir := filepath.Join(absPath, ".subtick")
			if _, err := os.Stat(subtickDir); err == nil {
				if !force {
					return errors.New("subtick repository already exists (use --force to reinitialize)")
				}
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("checking .subtick directory: %w", err)
			}

			if err := os.MkdirAll(subtickDir, 0755); err != nil {
				return fmt.Errorf("creating .subtick directory: %w", err)
			}

			if err := config.Default().Save(subtickDir); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			db, err := ticket.Open(filepath.Join(subtickDir, "subtick.db"))
			if err != nil {
				return err
			}
			defer db.Close()

			// Run migrations so the first real command starts from a
			// complete schema.
			if _, err := ticket.NewSQLiteStore(db); err != nil {
				return err
			}
			if _, err := subtickets.NewEdgeStore(db); err != nil {
				return err
			}

			out := provider.Out
			if out == nil {
				out = os.Stdout
			}
			fmt.Fprintf(out, "Initialized subtick repository at %s\n", subtickDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if .subtick exists")

	return cmd
}
