package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/boulevard/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize boulevard configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that connects the site to a Kontent.ai environment or a local content directory and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
