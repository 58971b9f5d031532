package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "boulevard",
	Short: "Server-rendered marketing site backed by Kontent.ai",
	Long: `Boulevard renders the marketing site from content in a Kontent.ai
environment. Pages opened with ?preview=true read unpublished content and
keep a live session open, so edits made in the CMS web app show up on the
page without a reload.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".boulevard.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
