package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-analyzer/internal/cli"
	"github.com/fmuoria/interview-analyzer/internal/gui"
)

func main() {
	root := cli.NewRootCommand(newGUICommand)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newGUICommand opens the desktop application
func newGUICommand(rt *cli.Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop application",
		RunE: func(*cobra.Command, []string) error {
			gui.NewApp(rt.Config(), rt.Agent(), rt.Logger().Component("gui")).Run()
			return nil
		},
	}
}
