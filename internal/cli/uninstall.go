package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// uninstallCommand creates the uninstall command.
func (c *CLI) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <skill>...",
		Short: "Remove installed skills",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mat, err := c.newMaterializer()
			if err != nil {
				return err
			}

			for _, name := range args {
				if _, err := os.Stat(filepath.Join(mat.Dir(), name)); os.IsNotExist(err) {
					printInfo("%s is not installed", name)
					continue
				}
				if err := mat.Uninstall(cmd.Context(), name); err != nil {
					return err
				}
				printSuccess("removed %s", name)
			}
			return nil
		},
	}
}
