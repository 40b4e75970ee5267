package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/apiwire/tui"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("apiwire-watch", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "apiwire-watch — watch apiwire activity in a terminal UI\n\nUsage:\n  apiwire-watch [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	inspectorAddr := fs.String("inspector-addr", "http://localhost:8080", "apiwire inspector base address")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("apiwire-watch %s\n", version)
		return
	}

	model := tui.New(*inspectorAddr + "/api/activity")
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "apiwire-watch:", err)
		os.Exit(1)
	}
}
