package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowscope/pkg/pipeline"
)

// statsCommand creates the stats command for summarizing a document.
func (c *CLI) statsCommand() *cobra.Command {
	var hierarchy string
	var collapseList []string
	var collapseAll bool

	cmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Summarize a graph document and its hierarchies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], hierarchy, parseCollapseList(collapseList), collapseAll)
		},
	}

	cmd.Flags().StringVar(&hierarchy, "hierarchy", "", "hierarchy choice id (default: document selection)")
	cmd.Flags().StringArrayVar(&collapseList, "collapse", nil, "container id to collapse (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&collapseAll, "collapse-all", false, "collapse every container")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, input, hierarchy string, collapse []string, collapseAll bool) error {
	runner, err := c.newRunner(ctx, true, "")
	if err != nil {
		return err
	}
	defer runner.Close()

	doc, s, docHash, err := runner.Ingest(ctx, pipeline.Options{
		Input:       input,
		Hierarchy:   hierarchy,
		Collapse:    collapse,
		CollapseAll: collapseAll,
	})
	if err != nil {
		return err
	}

	st := s.Stats()

	fmt.Println(StyleTitle.Render("Document"))
	printKeyValue("File", input)
	printKeyValue("Hash", docHash[:12])
	printKeyValue("Summary", doc.Summary())
	printNewline()

	fmt.Println(StyleTitle.Render("Graph"))
	printKeyValue("Nodes", fmt.Sprintf("%d (%d visible)", st.Nodes, st.VisibleNodes))
	printKeyValue("Edges", fmt.Sprintf("%d (%d visible)", st.Edges, st.VisibleEdges))
	printKeyValue("Containers", fmt.Sprintf("%d (%d visible, %d expanded)", st.Containers, st.VisibleContainers, st.ExpandedContainers))
	if st.HyperEdges > 0 {
		printKeyValue("Hyperedges", fmt.Sprintf("%d", st.HyperEdges))
	}
	printNewline()

	if containers := s.Containers(); len(containers) > 0 {
		fmt.Println(StyleTitle.Render("Containers"))
		for _, container := range containers {
			nodes, subs := 0, 0
			for _, childID := range s.ChildrenOf(container.ID) {
				if _, ok := s.Container(childID); ok {
					subs++
				} else {
					nodes++
				}
			}
			detail := fmt.Sprintf("%d nodes", nodes)
			if subs > 0 {
				detail += fmt.Sprintf(", %d groups", subs)
			}
			printKeyValue(container.DisplayLabel(), detail)
		}
		printNewline()
	}

	fmt.Println(StyleTitle.Render("Hierarchies"))
	for _, choice := range doc.HierarchyChoices {
		marker := "  "
		selected := doc.SelectedHierarchy
		if hierarchy != "" {
			selected = hierarchy
		}
		if choice.ID == selected {
			marker = StyleHighlight.Render(iconInfo) + " "
		}
		fmt.Printf("%s%s %s\n", marker, StyleValue.Render(choice.Name), StyleDim.Render("("+choice.ID+")"))
	}

	printNewline()
	printNextStep("Render it", fmt.Sprintf("flowscope render %s", input))
	return nil
}
