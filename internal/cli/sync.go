package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dmgrok/mcp-mother-skills/pkg/sync"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var (
		dir     string
		refresh bool
		yes     bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync skills matching the detected stack",
		Long:  `Sync detects the project's technology stack, matches it against the skill catalog (closing over skill dependencies), and applies the resulting changes to the skills directory. Without --yes an interactive picker lets you choose which changes to apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, report, err := c.detectStack(ctx, dir)
			if err != nil {
				return err
			}
			for _, failure := range report.Failures() {
				printWarning("%s tier failed: %s", failure.Tier, failure.Error)
			}

			store, err := c.newStore()
			if err != nil {
				return err
			}
			catalogSkills, err := store.Catalog(ctx, refresh)
			if err != nil {
				return err
			}
			matcher, err := c.newMatcher(catalogSkills)
			if err != nil {
				return err
			}
			matches := matcher.Run(st)

			mat, err := c.newMaterializer()
			if err != nil {
				return err
			}
			installed, err := mat.List()
			if err != nil {
				return err
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}

			// The diff alone decides whether anything is pending. A
			// session only exists once the interactive confirm flow
			// starts; --dry-run and --yes never allocate one.
			changes := sync.Plan(matches, installed, cfg.AutoRemove)
			if len(changes) == 0 {
				printSuccess("Already in sync (%d skills installed)", len(installed))
				return nil
			}

			printChanges(changes)
			if dryRun {
				printInfo("Dry run, nothing applied")
				return nil
			}

			engine, err := c.newEngine(mat)
			if err != nil {
				return err
			}

			if yes {
				printResult(engine.SyncImmediate(ctx, matches, installed))
				return nil
			}

			session := engine.Preview(ctx, matches, installed)
			selected, ok, err := pickChanges(session.Changes)
			if err != nil {
				return err
			}
			if !ok || len(selected) == 0 {
				printInfo("Sync aborted, nothing applied")
				return nil
			}

			result, err := engine.Confirm(ctx, session.ID, selected, nil)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory to scan")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the catalog cache")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply all changes without the interactive picker")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending changes without applying them")
	return cmd
}

// pickChanges runs the interactive change picker and returns the approved
// skill names. ok is false when the user aborted.
func pickChanges(changes []sync.Change) ([]string, bool, error) {
	model, err := tea.NewProgram(newChangePicker(changes)).Run()
	if err != nil {
		return nil, false, err
	}
	picker, ok := model.(changePickerModel)
	if !ok || picker.aborted {
		return nil, false, nil
	}
	return picker.approvedNames(), true, nil
}

// printChanges prints the pending change list.
func printChanges(changes []sync.Change) {
	fmt.Println(StyleTitle.Render("Pending Changes"))
	for _, change := range changes {
		verb := actionStyle(string(change.Action)).Render(fmt.Sprintf("%-7s", change.Action))
		line := verb + " " + StyleValue.Render(change.Name())
		if change.Action == sync.ActionUpdate {
			line += StyleDim.Render(fmt.Sprintf("  %s %s %s", change.OldVersion, iconArrow, change.Match.Skill.Version))
		} else if change.Match.Skill.Version != "" {
			line += StyleDim.Render("  " + change.Match.Skill.Version)
		}
		fmt.Println("  " + line)
		printDetail("%s", change.Reason)
	}
	printNewline()
}

// printResult prints the applied and failed changes of a sync.
func printResult(result *sync.Result) {
	for _, change := range result.Applied {
		printSuccess("%s %s", change.Action, change.Name())
	}
	for _, failure := range result.Failed {
		printError("%s %s: %s", failure.Change.Action, failure.Change.Name(), failure.Error)
	}
	if len(result.Failed) > 0 {
		printWarning("%d of %d changes failed", len(result.Failed), len(result.Applied)+len(result.Failed))
		return
	}
	printSuccess("Applied %d changes", len(result.Applied))
}
