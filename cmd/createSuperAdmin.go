// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/canonical/project-service/internal/db"
	httptypes "github.com/canonical/project-service/internal/http/types"
	"github.com/canonical/project-service/internal/logging"
	"github.com/canonical/project-service/internal/monitoring"
	"github.com/canonical/project-service/internal/password"
	"github.com/canonical/project-service/internal/storage"
	"github.com/canonical/project-service/internal/tracing"
	"github.com/canonical/project-service/internal/types"
)

// createSuperAdminCmd bootstraps a platform user that is not bound to any tenant
var createSuperAdminCmd = &cobra.Command{
	Use:   "create-super-admin",
	Short: "Create a platform super admin",
	Long:  `Create a platform super admin. The password is read from SUPER_ADMIN_PASSWORD when --password is not set.`,
	Args:  cobra.NoArgs,
	RunE:  runCreateSuperAdmin,
}

func init() {
	createSuperAdminCmd.Flags().String("dsn", "", "PostgreSQL DSN connection string")
	createSuperAdminCmd.Flags().String("email", "", "Super admin email")
	createSuperAdminCmd.Flags().String("full-name", "Platform Admin", "Super admin full name")
	createSuperAdminCmd.Flags().String("password", "", "Super admin password")
	createSuperAdminCmd.Flags().Int("bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost")
	_ = createSuperAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(createSuperAdminCmd)
}

func runCreateSuperAdmin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	fullName, _ := cmd.Flags().GetString("full-name")
	plain, _ := cmd.Flags().GetString("password")
	cost, _ := cmd.Flags().GetInt("bcrypt-cost")

	if plain == "" {
		plain = os.Getenv("SUPER_ADMIN_PASSWORD")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if err := httptypes.ValidateVar("email", email, "required,email"); err != nil {
		return err
	}

	if err := httptypes.ValidateVar("password", plain, "min=8,max=72"); err != nil {
		return fmt.Errorf("password must be between 8 and 72 characters")
	}

	hash, err := password.NewHasher(cost).Hash(plain)
	if err != nil {
		return err
	}

	sqlDB, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("project-service")
	logger := logging.NewLogger("info")
	defer logger.Sync()

	s := storage.NewStorage(db.NewDBClientFromDB(sqlDB, tracer, monitor, logger), tracer, monitor, logger)

	user, err := s.CreateUser(cmd.Context(), &types.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         types.RoleSuperAdmin,
		IsActive:     true,
	})
	if errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("a super admin with email %s already exists", email)
	}

	if err != nil {
		return fmt.Errorf("failed to create super admin: %w", err)
	}

	logger.Security().UserCreated("cli", user.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Super admin %s created with id %s\n", user.Email, user.ID)

	return nil
}
