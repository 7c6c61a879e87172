package service

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/queue"
	"github.com/catalog-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	err    error
	onSend func(to string)
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.onSend != nil {
		m.onSend(to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatalf("no mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

type fakeMailQueue struct {
	mu         sync.Mutex
	enabled    bool
	err        error
	orderTasks []queue.OrderStatusEmailPayload
	resetTasks []queue.PasswordResetEmailPayload
}

func (q *fakeMailQueue) Enabled() bool {
	return q != nil && q.enabled
}

func (q *fakeMailQueue) EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.orderTasks = append(q.orderTasks, payload)
	return nil
}

func (q *fakeMailQueue) EnqueuePasswordResetEmail(payload queue.PasswordResetEmailPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.resetTasks = append(q.resetTasks, payload)
	return nil
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func newServiceTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "catalog-next", BaseURL: "http://shop.test"},
		JWT: config.JWTConfig{
			AccessSecret:        "access-secret-for-tests",
			RefreshSecret:       "refresh-secret-for-tests",
			AccessExpireMinutes: 15,
			RefreshExpireDays:   7,
			ResetExpireMinutes:  60,
			Issuer:              "catalog-next-test",
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 6},
		},
		Email: config.EmailConfig{VerificationExpireHours: 24},
		Order: config.OrderConfig{TxTimeoutSeconds: 10},
	}
}

type authTestEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	svc    *AuthService
	tokens *TokenService
	mailer *fakeMailer
	queue  *fakeMailQueue
}

func setupAuthServiceTest(t *testing.T) *authTestEnv {
	t.Helper()
	db := setupServiceTestDB(t)
	cfg := newServiceTestConfig()
	tokens := NewTokenService(cfg.JWT)
	mailer := &fakeMailer{}
	mailQueue := &fakeMailQueue{}
	svc := NewAuthService(
		cfg,
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		tokens,
		mailer,
		mailQueue,
	)
	return &authTestEnv{db: db, cfg: cfg, svc: svc, tokens: tokens, mailer: mailer, queue: mailQueue}
}

// tokenFromMail extracts the token query parameter of the link in body.
func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	idx := strings.Index(body, "token=")
	if idx < 0 {
		t.Fatalf("mail body has no token link: %q", body)
	}
	raw := body[idx+len("token="):]
	if end := strings.IndexAny(raw, " \r\n"); end >= 0 {
		raw = raw[:end]
	}
	token, err := url.QueryUnescape(raw)
	if err != nil {
		t.Fatalf("unescape token failed: %v", err)
	}
	return token
}

func createServiceTestProduct(t *testing.T, db *gorm.DB, name, price string, inStock bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:    name,
		Price:   models.MustMoney(price),
		InStock: inStock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createServiceTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  "hash",
		EmailVerified: true,
		Role:          "user",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}
