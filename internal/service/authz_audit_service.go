package service

import (
	"strings"
	"time"

	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/repository"
)

// AuthzAuditService keeps the history of permission changes.
type AuthzAuditService struct {
	repo repository.AuthzAuditLogRepository
}

// NewAuthzAuditService creates the service.
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository) *AuthzAuditService {
	return &AuthzAuditService{repo: repo}
}

// RecordAuthzAuditInput describes one change.
type RecordAuthzAuditInput struct {
	OperatorUserID uint
	OperatorRole   string
	Action         string
	Role           string
	Permission     string
	Method         string
	RequestID      string
}

// Record stores a change.
func (s *AuthzAuditService) Record(input RecordAuthzAuditInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Create(&models.AuthzAuditLog{
		OperatorUserID: input.OperatorUserID,
		OperatorRole:   strings.TrimSpace(input.OperatorRole),
		Action:         strings.TrimSpace(input.Action),
		Role:           strings.TrimSpace(input.Role),
		Permission:     strings.TrimSpace(input.Permission),
		Method:         strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:      strings.TrimSpace(input.RequestID),
		CreatedAt:      time.Now(),
	})
}

// ListForAdmin pages through the history.
func (s *AuthzAuditService) ListForAdmin(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}
