package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowscope/pkg/pipeline"
)

// viewCommand creates the view command for interactive hierarchy exploration.
func (c *CLI) viewCommand() *cobra.Command {
	var hierarchy string

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Explore the container hierarchy interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], hierarchy)
		},
	}

	cmd.Flags().StringVar(&hierarchy, "hierarchy", "", "hierarchy choice id (default: document selection)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input, hierarchy string) error {
	runner, err := c.newRunner(ctx, true, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	_, s, _, err := runner.Ingest(ctx, pipeline.Options{
		Input:     input,
		Hierarchy: hierarchy,
	})
	if err != nil {
		return err
	}

	model := NewContainerTreeModel(s)
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	// Print the collapse set so it can be replayed on the command line.
	m, ok := final.(ContainerTreeModel)
	if !ok {
		return nil
	}
	collapsed := m.State.CollapsedContainers()
	if len(collapsed) == 0 {
		return nil
	}

	printNewline()
	printInfo("Collapsed %d container(s)", len(collapsed))
	for _, id := range collapsed {
		printDetail("%s", id)
	}
	printNextStep("Render this view", fmt.Sprintf(
		"flowscope render %s --collapse %s", input, strings.Join(collapsed, ",")))
	return nil
}
