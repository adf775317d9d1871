/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/meridiancap/cms-apiserver/config"
	"github.com/meridiancap/cms-apiserver/internal/db"
	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/spf13/cobra"
)

// sessionsCmd groups session maintenance operations.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage admin sessions",
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete sessions past their expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		swept, err := store.NewSessionRepository(dbConn).DeleteExpired(cmd.Context())
		if err != nil {
			return fmt.Errorf("session cleanup failed: %w", err)
		}

		fmt.Printf("deleted %d expired sessions\n", swept)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
}
