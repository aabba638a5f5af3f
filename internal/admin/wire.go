package admin

import (
	"database/sql"

	"go.uber.org/zap"

	"fournil/internal/admin/controller"
	"fournil/internal/admin/repository"
	"fournil/internal/admin/service"
	"fournil/internal/config"
)

// NewModule wires the auth feature: repositories over the shared database
// handle, the auth service with its allow-list, and the HTTP controller.
func NewModule(db *sql.DB, mailer service.Mailer, cfg config.AdminConfig, logger *zap.Logger) (*service.AuthService, *controller.AuthController) {
	auth := service.NewAuthService(
		repository.NewMySQLUserRepository(db),
		repository.NewMySQLRoleRepository(db),
		repository.NewMySQLTokenRepository(db),
		mailer,
		logger,
		cfg.JWTSecret,
		cfg.SessionTTL,
		cfg.AllowedEmails,
	)

	return auth, controller.NewAuthController(auth, logger)
}
