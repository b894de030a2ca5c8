package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/octousage/internal/config"
)

var initForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a template config file",
	Long: `Writes a config.yaml with every default filled in. Credentials are better
kept in .env or the environment (OCTOPUS_EMAIL, OCTOPUS_PASSWORD).`,
	Args: cobra.NoArgs,
	RunE: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := getConfigPath()

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(path, config.Template()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}
