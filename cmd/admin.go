/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/meridiancap/cms-apiserver/config"
	"github.com/meridiancap/cms-apiserver/internal/db"
	"github.com/meridiancap/cms-apiserver/internal/logger"
	"github.com/meridiancap/cms-apiserver/internal/services"
	"github.com/meridiancap/cms-apiserver/internal/store"
	"github.com/spf13/cobra"
)

// adminCmd groups administrative account operations.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var (
	adminUsername string
	adminEmail    string
	adminPassword string
	adminFullName string
	adminRole     string
)

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" || adminEmail == "" || adminPassword == "" {
			return fmt.Errorf("--username, --email, and --password are required")
		}

		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		auth := services.NewAuthService(
			store.NewAdminRepository(dbConn),
			store.NewSessionRepository(dbConn),
			logger.New("admin"),
			cfg.Session.TTL,
		)

		admin, err := auth.CreateAdmin(cmd.Context(), adminUsername, adminEmail, adminFullName, adminRole, adminPassword)
		if err != nil {
			return fmt.Errorf("create admin failed: %w", err)
		}

		fmt.Printf("created admin %q (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

var (
	adminIdentifier  string
	adminNewPassword string
)

var adminSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Reset an admin account's password",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminIdentifier == "" || adminNewPassword == "" {
			return fmt.Errorf("--identifier and --password are required")
		}

		cfg := config.LoadConfig()
		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = dbConn.Close()
		}()

		auth := services.NewAuthService(
			store.NewAdminRepository(dbConn),
			store.NewSessionRepository(dbConn),
			logger.New("admin"),
			cfg.Session.TTL,
		)

		if err := auth.SetPassword(cmd.Context(), adminIdentifier, adminNewPassword); err != nil {
			return fmt.Errorf("set password failed: %w", err)
		}

		fmt.Printf("updated password for %q\n", adminIdentifier)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)
	adminCmd.AddCommand(adminSetPasswordCmd)

	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "login name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "email address")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
	adminCreateCmd.Flags().StringVar(&adminFullName, "full-name", "", "display name")
	adminCreateCmd.Flags().StringVar(&adminRole, "role", "admin", "account role")

	adminSetPasswordCmd.Flags().StringVar(&adminIdentifier, "identifier", "", "username or email of the account")
	adminSetPasswordCmd.Flags().StringVar(&adminNewPassword, "password", "", "new password")
}
