package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// catalogCommand creates the catalog browsing command.
func (c *CLI) catalogCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the aggregated skill catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newStore()
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			catalogSkills, err := store.Catalog(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d skills", len(catalogSkills)))

			if len(catalogSkills) == 0 {
				printWarning("Catalog is empty; check your configured sources")
				return nil
			}

			fmt.Println(StyleTitle.Render("Skill Catalog"))
			for _, skill := range catalogSkills {
				line := fmt.Sprintf("%-28s %-10s", skill.Name, skill.Version)
				if skill.Description != "" {
					line += StyleDim.Render(" " + skill.Description)
				}
				fmt.Println("  " + StyleValue.Render(line))
				if len(skill.Dependencies) > 0 {
					printDetail("requires: %s", strings.Join(skill.Dependencies, ", "))
				}
			}
			printNewline()
			printNextStep("Sync matching skills into your project", "mother-skills sync")
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and refetch all sources")
	cmd.AddCommand(c.bundlesCommand())
	return cmd
}

// bundlesCommand creates the "catalog bundles" subcommand.
func (c *CLI) bundlesCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "bundles",
		Short: "List curated skill bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newStore()
			if err != nil {
				return err
			}
			bundles, err := store.Bundles(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if len(bundles) == 0 {
				printInfo("No bundles configured")
				return nil
			}

			fmt.Println(StyleTitle.Render("Skill Bundles"))
			for _, bundle := range bundles {
				fmt.Println("  " + StyleHighlight.Render(bundle.Name))
				if bundle.Description != "" {
					printDetail("%s", bundle.Description)
				}
				printDetail("skills: %s", strings.Join(bundle.Skills, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and refetch the bundle document")
	return cmd
}
