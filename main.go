// subtick is a ticket tracker built around parent/child relationships.
package main

import (
	"fmt"
	"os"

	"subtick/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
