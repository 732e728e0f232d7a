// Package subtickets implements the parent/child relationship engine:
// a durable edge store over the subtickets table, a validator for
// proposed parent sets, and a synchronization and query engine driven
// by ticket lifecycle events.
package subtickets

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// numbersRE matches maximal runs of digits. Candidate parent ids are
// whatever digit runs appear in the field, so free-form input like
// "#1, #2 and #3" tokenizes the same as "1 2 3".
var numbersRE = regexp.MustCompile(`\d+`)

// ParseIDs extracts the distinct candidate ticket ids from a free-text
// parents field, sorted ascending. A digit run too large for an int is
// beyond what the tolerant tokenizer accepts and fails the whole parse.
func ParseIDs(text string) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int
	for _, run := range numbersRE.FindAllString(text, -1) {
		n, err := strconv.Atoi(run)
		if err != nil {
			return nil, fmt.Errorf("parse candidate id %q: %w", run, err)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, n)
	}
	sort.Ints(ids)
	return ids, nil
}

// FormatIDs renders ids in canonical form: sorted ascending, joined
// with ", ". This is the normalized value written back to the parents
// field after validation.
func FormatIDs(ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// renderPath renders a parent chain as "#1 > #2 > #3" for circularity
// error messages.
func renderPath(path []int) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, " > ")
}

func containsInt(ids []int, id int) bool {
	for _, n := range ids {
		if n == id {
			return true
		}
	}
	return false
}

// diffIDs returns the members of a that are not in b, ascending.
func diffIDs(a, b []int) []int {
	inB := make(map[int]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	var out []int
	for _, id := range a {
		if !inB[id] {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
