// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canonical/account-service/internal/db"
	"github.com/canonical/account-service/internal/logging"
	"github.com/canonical/account-service/internal/monitoring"
	"github.com/canonical/account-service/internal/storage"
	"github.com/canonical/account-service/internal/tracing"
	"github.com/canonical/account-service/internal/types"
)

// adminCmd groups operator-facing directory maintenance commands that talk
// to the database directly, bypassing the HTTP surface.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative operations on the tenant directory",
}

var tenantStatusCmd = &cobra.Command{
	Use:   "tenant-status <tenant-id> <enabled|disabled>",
	Short: "Enable or disable a tenant",
	Long:  `Disabled tenants stay in the directory but their memberships no longer resolve at login.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(2)(cmd, args); err != nil {
			return err
		}
		if args[1] != "enabled" && args[1] != "disabled" {
			return fmt.Errorf("invalid status %q, expected enabled or disabled", args[1])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")

		s, cleanup, err := newAdminStorage(dsn)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.SetTenantStatus(cmd.Context(), args[0], args[1] == "enabled"); err != nil {
			return err
		}

		cmd.Printf("tenant %s is now %s\n", args[0], args[1])
		return nil
	},
}

var inviteCreateCmd = &cobra.Command{
	Use:   "invite <tenant-id> <email>",
	Short: "Create an invite code for a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")
		role, _ := cmd.Flags().GetString("role")
		code, _ := cmd.Flags().GetString("code")

		if role != types.RoleAdmin && role != types.RoleMember {
			return fmt.Errorf("invalid role %q", role)
		}
		if code == "" {
			code = uuid.NewString()
		}

		s, cleanup, err := newAdminStorage(dsn)
		if err != nil {
			return err
		}
		defer cleanup()

		invite, err := s.CreateInvite(cmd.Context(), &types.Invite{
			Code:     code,
			TenantID: args[0],
			Email:    args[1],
			Role:     role,
		})
		if err != nil {
			return err
		}

		cmd.Printf("invite %s created, code: %s\n", invite.ID, invite.Code)
		return nil
	},
}

func init() {
	adminCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN connection string")
	_ = adminCmd.MarkPersistentFlagRequired("dsn")

	inviteCreateCmd.Flags().String("role", types.RoleMember, "role granted on redemption (admin or member)")
	inviteCreateCmd.Flags().String("code", "", "invite code, generated when omitted")

	adminCmd.AddCommand(tenantStatusCmd)
	adminCmd.AddCommand(inviteCreateCmd)
	rootCmd.AddCommand(adminCmd)
}

// newAdminStorage opens a small direct pool for one-off commands.
func newAdminStorage(dsn string) (*storage.Storage, func(), error) {
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("account-service", logger)

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             dsn,
			MaxConns:        2,
			MinConns:        1,
			MaxConnLifetime: 5 * time.Minute,
			MaxConnIdleTime: time.Minute,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database client: %v", err)
	}

	return storage.NewStorage(dbClient, tracer, monitor, logger), dbClient.Close, nil
}
