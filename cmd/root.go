/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cms-apiserver",
	Short: "API server for the Meridian Capital marketing site",
	Long: `cms-apiserver is the backend of the Meridian Capital marketing
site: public content endpoints plus an authenticated admin API for
managing projects, services, reports, FAQs, page content, settings,
and media.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
