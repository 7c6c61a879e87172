package repository

import (
	"testing"
	"time"

	"github.com/catalog-next/internal/models"
)

func TestUserLoginLogRepositoryListFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserLoginLogRepository(db)

	now := time.Now()
	entries := []models.UserLoginLog{
		{UserID: 7, Email: "a@example.com", Status: "success", ClientIP: "10.0.0.1", CreatedAt: now.Add(-48 * time.Hour)},
		{UserID: 0, Email: "a@example.com", Status: "failed", FailReason: "invalid_credentials", ClientIP: "10.0.0.2", CreatedAt: now.Add(-time.Hour)},
		{UserID: 8, Email: "b@example.com", Status: "success", ClientIP: "10.0.0.2", CreatedAt: now},
	}
	for i := range entries {
		if err := repo.Create(&entries[i]); err != nil {
			t.Fatalf("create log failed: %v", err)
		}
	}

	logs, total, err := repo.List(UserLoginLogListFilter{Email: " A@example.com "})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(logs) != 2 || logs[0].ID != entries[1].ID {
		t.Fatalf("want 2 entries newest first got total=%d %+v", total, logs)
	}

	logs, total, err = repo.List(UserLoginLogListFilter{ClientIP: "10.0.0.2", Status: "success"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || logs[0].UserID != 8 {
		t.Fatalf("want user 8 only got total=%d %+v", total, logs)
	}

	logs, total, err = repo.List(UserLoginLogListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(logs) != 1 || logs[0].ID != entries[0].ID {
		t.Fatalf("want oldest entry on page 2 got total=%d %+v", total, logs)
	}
}

func TestAuthzAuditLogRepositoryList(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewAuthzAuditLogRepository(db)
	for _, action := range []string{"policy_grant", "policy_revoke", "policy_grant"} {
		if err := repo.Create(&models.AuthzAuditLog{OperatorUserID: 1, Action: action, Role: "role:user"}); err != nil {
			t.Fatalf("create audit failed: %v", err)
		}
	}

	logs, total, err := repo.List(AuthzAuditLogListFilter{Action: "policy_grant", Role: "role:user"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(logs) != 2 || logs[0].ID < logs[1].ID {
		t.Fatalf("want 2 grants newest first got total=%d %+v", total, logs)
	}
}
