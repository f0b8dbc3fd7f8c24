package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// AuditService appends identity events to the immutable log. Entries never
// carry credentials: the log schema has no password field and the record
// methods only accept the identifiers worth keeping.
//
// Recording is best-effort relative to the triggering operation — a signup
// does not fail because the audit insert did. Failures are logged instead.
type AuditService struct {
	entries repository.AuditLogRepository
	logger  *slog.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(entries repository.AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{entries: entries, logger: logger}
}

func (s *AuditService) record(ctx context.Context, entry *model.AuditLog) {
	if err := s.entries.AppendAuditLog(ctx, entry); err != nil {
		s.logger.Error("failed to append audit log",
			slog.String("type", string(entry.Type)),
			slog.String("error", err.Error()),
		)
	}
}

// RecordSignup logs a new registration.
func (s *AuditService) RecordSignup(ctx context.Context, email, username string) {
	s.record(ctx, &model.AuditLog{
		Type:     model.LogSignup,
		Message:  fmt.Sprintf("new user registered: %s", username),
		Email:    email,
		Username: username,
	})
}

// RecordFailedLogin logs a failed authentication attempt for the email.
func (s *AuditService) RecordFailedLogin(ctx context.Context, email string) {
	s.record(ctx, &model.AuditLog{
		Type:    model.LogSecurity,
		Message: "failed login attempt",
		Email:   email,
	})
}

// RecordSystem logs an operational event (seeding, admin actions).
func (s *AuditService) RecordSystem(ctx context.Context, message string) {
	s.record(ctx, &model.AuditLog{
		Type:    model.LogSystem,
		Message: message,
	})
}

// List returns the audit log, newest first.
func (s *AuditService) List(ctx context.Context) ([]model.AuditLog, error) {
	return s.entries.ListAuditLogs(ctx)
}
