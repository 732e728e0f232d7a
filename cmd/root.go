package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"subtick/internal/config"
	"subtick/internal/notify"
	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"github.com/spf13/cobra"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Config captured from flags before Execute()
	SubtickPath string
	JSONOutput  bool
	Verbose     bool
	Out         io.Writer
	Err         io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a mock/test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		Out: app.Out,
		Err: app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	dir, err := FindSubtickDir(p.SubtickPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	db, err := ticket.Open(filepath.Join(dir, "subtick.db"))
	if err != nil {
		return nil, err
	}

	store, err := ticket.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	edges, err := subtickets.NewEdgeStore(db)
	if err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	level := slog.LevelWarn
	if p.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	opts := cfg.Options()
	notifier := notify.NewLogNotifier(log)

	return &App{
		Tickets:   store,
		Engine:    subtickets.NewEngine(edges, store, notifier, opts, log),
		Validator: subtickets.NewValidator(store, edges, opts, log),
		Config:    cfg,
		Out:       out,
		Err:       errOut,
		JSON:      p.JSONOutput,
	}, nil
}

// FindSubtickDir locates the .subtick directory.
// If path is provided, it uses that directly.
// Otherwise, it walks up from the current directory looking for .subtick.
func FindSubtickDir(path string) (string, error) {
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("cannot access subtick directory %s: %w", path, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("subtick path is not a directory: %s", path)
		}
		return path, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("cannot get current directory: %w", err)
	}

	dir := cwd
	for {
		subtickDir := filepath.Join(dir, ".subtick")
		info, err := os.Stat(subtickDir)
		if err == nil && info.IsDir() {
			return subtickDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding .subtick
			return "", fmt.Errorf("no .subtick directory found (searched from %s to /)", cwd)
		}
		dir = parent
	}
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "subtick",
		Short: "A ticket tracker with parent/child relationships",
		Long: `Subtick is a ticket tracker built around parent/child relationships.
Tickets declare their parents in a free-form text field; subtick keeps a
queryable edge table in sync with it and enforces the rules that keep the
hierarchy sound: no cycles, no dangling references, and closure ordering
between parents and children.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&provider.SubtickPath, "path", "", "Path to .subtick directory (default: search from cwd)")
	rootCmd.PersistentFlags().BoolVar(&provider.Verbose, "verbose", false, "Enable debug logging")

	// Register all commands
	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newCreateCmd(provider))
	rootCmd.AddCommand(newShowCmd(provider))
	rootCmd.AddCommand(newUpdateCmd(provider))
	rootCmd.AddCommand(newCloseCmd(provider))
	rootCmd.AddCommand(newReopenCmd(provider))
	rootCmd.AddCommand(newDeleteCmd(provider))
	rootCmd.AddCommand(newChildrenCmd(provider))
	rootCmd.AddCommand(newParentsCmd(provider))
	rootCmd.AddCommand(newListCmd(provider))

	return rootCmd
}
