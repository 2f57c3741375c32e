package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmgrok/mcp-mother-skills/pkg/errors"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "install <skill>...",
		Short: "Install skills by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := c.newStore()
			if err != nil {
				return err
			}
			catalogSkills, err := store.Catalog(ctx, refresh)
			if err != nil {
				return err
			}
			index := make(map[string]int, len(catalogSkills))
			for i, skill := range catalogSkills {
				index[strings.ToLower(skill.Name)] = i
			}

			mat, err := c.newMaterializer()
			if err != nil {
				return err
			}

			failed := 0
			for _, name := range args {
				i, ok := index[strings.ToLower(name)]
				if !ok {
					printError("%s: not in catalog", name)
					failed++
					continue
				}
				skill := catalogSkills[i]
				if err := mat.Install(ctx, skill); err != nil {
					printError("%s: %s", name, errors.UserMessage(err))
					failed++
					continue
				}
				printSuccess("installed %s %s", skill.Name, skill.Version)
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeSkillNotFound, "%d of %d skills failed to install", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the catalog cache")
	return cmd
}
