package service

import (
	"strings"
	"testing"

	"github.com/catalog-next/internal/constants"
	"github.com/catalog-next/internal/repository"
)

func TestUserLoginLogRecordNormalizes(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewUserLoginLogService(repository.NewUserLoginLogRepository(db))

	if err := svc.Record(RecordUserLoginInput{Email: " Ann@Example.com ", Status: "weird", UserAgent: strings.Repeat("x", 600)}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.Record(RecordUserLoginInput{UserID: 3, Email: "ann@example.com", Status: "SUCCESS", FailReason: "ignored"}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	logs, total, err := svc.ListForAdmin(repository.UserLoginLogListFilter{Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("want 2 entries got %d", total)
	}
	if logs[0].Status != constants.LoginLogStatusSuccess || logs[0].FailReason != "" || logs[0].UserID != 3 {
		t.Fatalf("unexpected success entry %+v", logs[0])
	}
	failed := logs[1]
	if failed.Status != constants.LoginLogStatusFailed || failed.FailReason != constants.LoginLogFailReasonInternalError {
		t.Fatalf("want failed/internal_error got %s/%s", failed.Status, failed.FailReason)
	}
	if failed.Email != "ann@example.com" || len(failed.UserAgent) != maxUserAgentLength {
		t.Fatalf("want normalized email and truncated agent got %q/%d", failed.Email, len(failed.UserAgent))
	}
}
