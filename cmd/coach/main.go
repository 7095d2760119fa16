// Command coach is the command-line front end of the health coach: it asks
// single-shot questions and previews document ingestion.
package main

import (
	"fmt"
	"os"

	"thrive-chatbot/cmd/coach/commands"
)

// Version information (set by the release build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
