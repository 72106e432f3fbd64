package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lareveal/internal/cli/ui"
)

func main() {
	model, err := ui.NewModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "lareveal:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "lareveal:", err)
		os.Exit(1)
	}
}
