// Package cmd implements the subtick command-line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"subtick/internal/config"
	"subtick/internal/subtickets"
	"subtick/internal/ticket"

	"golang.org/x/term"
)

// App holds application state shared across commands.
type App struct {
	Tickets   ticket.Store
	Engine    *subtickets.Engine
	Validator *subtickets.Validator
	Config    *config.Config
	Out       io.Writer
	Err       io.Writer
	JSON      bool // output in JSON format
}

// parseTicketID parses a numeric ticket id argument.
func parseTicketID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ticket.ErrInvalidID, arg)
	}
	return id, nil
}

// OutputJSON writes v to Out as indented JSON.
func (a *App) OutputJSON(v interface{}) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintRejections reports validation rejections on Err, one per line.
func (a *App) PrintRejections(rejections []subtickets.Rejection) {
	for _, r := range rejections {
		fmt.Fprintf(a.Err, "Error: %s\n", a.WarnColor(r.String()))
	}
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if f, ok := a.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if f, ok := a.Err.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}
