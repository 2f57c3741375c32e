package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmgrok/mcp-mother-skills/pkg/detect"
	"github.com/dmgrok/mcp-mother-skills/pkg/stack"
)

// detectCommand creates the detect command.
func (c *CLI) detectCommand() *cobra.Command {
	var (
		dir        string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect the technology stack of a project",
		Long:  `Detect runs every evidence tier (manifest files, static analysis, the GitHub dependency graph when configured, and README mentions) over the project directory and prints the merged technology stack.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, report, err := c.detectStack(cmd.Context(), dir)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printDetectJSON(st, report)
			}
			printStack(st)
			printTierReport(report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory to scan")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the stack as JSON")
	return cmd
}

func printDetectJSON(st *stack.Stack, report detect.Report) error {
	out := struct {
		Stack  map[stack.Category][]stack.Technology `json:"stack"`
		Report detect.Report                         `json:"report"`
	}{st.MarshalCategories(), report}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// printStack prints the detected technologies grouped by category.
func printStack(st *stack.Stack) {
	if st.IsEmpty() {
		printInfo("No technologies detected")
		return
	}

	fmt.Println(StyleTitle.Render("Detected Stack"))
	for _, cat := range stack.Categories {
		techs := st.Category(cat)
		if len(techs) == 0 {
			continue
		}
		fmt.Println(StyleHighlight.Render(string(cat)))
		for _, tech := range techs {
			line := fmt.Sprintf("%-20s", tech.ID)
			if tech.Version != "" {
				line += " " + tech.Version
			}
			line += StyleDim.Render(fmt.Sprintf("  %.0f%%  %s", tech.Confidence*100, tech.Source))
			fmt.Println("  " + StyleValue.Render(line))
		}
	}
}

// printTierReport prints the per-tier outcome summary.
func printTierReport(report detect.Report) {
	printNewline()
	for _, tier := range report.Tiers {
		if tier.Failed() {
			printWarning("%s tier failed: %s", tier.Tier, tier.Error)
			continue
		}
		printDetail("%s tier: %d detections", tier.Tier, tier.Detections)
	}
}
