package repository

import (
	"testing"
	"time"

	"github.com/catalog-next/internal/models"
)

func TestUserRepositoryConsumeVerificationTokenOnce(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)

	token := "abc123"
	expires := time.Now().Add(time.Hour)
	user := &models.User{
		Username:                       "carol",
		Email:                          "carol@example.com",
		PasswordHash:                   "hash",
		Role:                           "user",
		EmailVerificationToken:         &token,
		EmailVerificationTokenExpireAt: &expires,
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := repo.GetByVerificationToken(token, time.Now())
	if err != nil || found == nil || found.ID != user.ID {
		t.Fatalf("lookup by token failed: %v %+v", err, found)
	}
	expired, err := repo.GetByVerificationToken(token, expires.Add(time.Minute))
	if err != nil || expired != nil {
		t.Fatalf("expired lookup want nil got %+v (%v)", expired, err)
	}

	ok, err := repo.ConsumeVerificationToken(user.ID, token, time.Now())
	if err != nil || !ok {
		t.Fatalf("first consume want true got %v (%v)", ok, err)
	}
	ok, err = repo.ConsumeVerificationToken(user.ID, token, time.Now())
	if err != nil || ok {
		t.Fatalf("second consume want false got %v (%v)", ok, err)
	}

	reloaded, _ := repo.GetByID(user.ID)
	if !reloaded.EmailVerified || reloaded.EmailVerificationToken != nil || reloaded.EmailVerificationTokenExpireAt != nil {
		t.Fatalf("verification fields not updated: %+v", reloaded)
	}
}

func TestUserRepositoryUniqueEmail(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	createRepoTestUser(t, db, "dave")

	dup := &models.User{Username: "dave2", Email: "dave@example.com", PasswordHash: "x", Role: "user"}
	err := repo.Create(dup)
	if !IsUniqueViolation(err) {
		t.Fatalf("want unique violation got %v", err)
	}

	exists, err := repo.ExistsByEmail("dave@example.com", 0)
	if err != nil || !exists {
		t.Fatalf("exists by email want true got %v (%v)", exists, err)
	}
	exists, _ = repo.ExistsByUsername("nobody", 0)
	if exists {
		t.Fatalf("unknown username should not exist")
	}
}

func TestUserRepositoryListKeyword(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	createRepoTestUser(t, db, "erin")
	createRepoTestUser(t, db, "frank")

	users, total, err := repo.List(UserListFilter{Keyword: "fra", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || users[0].Username != "frank" {
		t.Fatalf("keyword want frank got %d %+v", total, users)
	}
}

func TestRefreshTokenRepositoryRotate(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewRefreshTokenRepository(db)
	user := createRepoTestUser(t, db, "gina")

	now := time.Now()
	if err := repo.Save(user.ID, "jti-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save(user.ID, "jti-2", now.Add(time.Hour)); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	row, err := repo.GetByUserID(user.ID)
	if err != nil || row == nil || row.TokenID != "jti-2" {
		t.Fatalf("save should replace active token, got %+v (%v)", row, err)
	}

	ok, err := repo.Rotate(user.ID, "jti-1", "jti-3", now.Add(time.Hour), now)
	if err != nil || ok {
		t.Fatalf("rotate with stale id want false got %v (%v)", ok, err)
	}
	ok, err = repo.Rotate(user.ID, "jti-2", "jti-3", now.Add(time.Hour), now)
	if err != nil || !ok {
		t.Fatalf("rotate want true got %v (%v)", ok, err)
	}
	ok, _ = repo.Rotate(user.ID, "jti-2", "jti-4", now.Add(time.Hour), now)
	if ok {
		t.Fatalf("replayed rotate should fail")
	}

	if err := repo.DeleteByUserID(user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.DeleteByUserID(user.ID); err != nil {
		t.Fatalf("delete should be idempotent: %v", err)
	}
	row, _ = repo.GetByUserID(user.ID)
	if row != nil {
		t.Fatalf("token should be gone")
	}
}
