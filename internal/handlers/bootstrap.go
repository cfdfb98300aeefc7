package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harentsoaR/academic-scheduler/internal/logger"
	"github.com/harentsoaR/academic-scheduler/internal/models"
	"github.com/harentsoaR/academic-scheduler/internal/utils"
)

// EnsureAdmin creates the first administrator when the user collection has
// none. It returns false when an admin already exists or no email is given.
func EnsureAdmin(ctx context.Context, users UserStore, name, email, password string) (bool, error) {
	if email == "" {
		return false, nil
	}
	n, err := users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	admin := &models.User{
		Name:       name,
		Email:      normalizeEmail(email),
		Password:   hashed,
		Role:       models.RoleAdmin,
		FirstLogin: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	logger.Info().Str("email", admin.Email).Msg("Bootstrap admin created")
	return true, nil
}
