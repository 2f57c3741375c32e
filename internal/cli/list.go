package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			mat, err := c.newMaterializer()
			if err != nil {
				return err
			}
			installed, err := mat.List()
			if err != nil {
				return err
			}
			if len(installed) == 0 {
				printInfo("No skills installed in %s", mat.Dir())
				printNextStep("Install skills for a project", "mother-skills sync")
				return nil
			}

			fmt.Println(StyleTitle.Render("Installed Skills"))
			for _, skill := range installed {
				line := fmt.Sprintf("%-28s %-10s", skill.Name, skill.Version)
				line += StyleDim.Render(skill.InstalledAt.Format("2006-01-02"))
				fmt.Println("  " + StyleValue.Render(line))
				if skill.Description != "" {
					printDetail("%s", skill.Description)
				}
			}
			printNewline()
			printKeyValue("directory", mat.Dir())
			return nil
		},
	}
}
