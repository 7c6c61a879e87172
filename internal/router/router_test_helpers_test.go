package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/catalog-next/internal/cache"
	"github.com/catalog-next/internal/config"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/models"
	"github.com/catalog-next/internal/provider"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type capturedMail struct {
	To      string
	Subject string
	Body    string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *captureMailer) lastTo(t *testing.T, to string) capturedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == to {
			return m.sent[i]
		}
	}
	t.Fatalf("no mail sent to %s", to)
	return capturedMail{}
}

type testEnvelope struct {
	Success                 bool                              `json:"success"`
	Message                 string                            `json:"message"`
	Data                    json.RawMessage                   `json:"data"`
	Errors                  []response.FieldError             `json:"errors"`
	ErrorCode               string                            `json:"error_code"`
	EmailVerificationStatus *response.EmailVerificationStatus `json:"email_verification_status"`
	RequestID               string                            `json:"request_id"`
}

type routerTestEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	container *provider.Container
	engine    *gin.Engine
	mailer    *captureMailer
	redis     *miniredis.Miniredis
}

func newRouterTestConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "catalog-next", BaseURL: "http://shop.test"},
		Server: config.ServerConfig{Mode: "debug"},
		JWT: config.JWTConfig{
			AccessSecret:        "router-access-secret",
			RefreshSecret:       "router-refresh-secret",
			AccessExpireMinutes: 15,
			RefreshExpireDays:   7,
			ResetExpireMinutes:  60,
			Issuer:              "catalog-next-test",
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 6},
		},
		Email:   config.EmailConfig{VerificationExpireHours: 24},
		Order:   config.OrderConfig{TxTimeoutSeconds: 10},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Upload: config.UploadConfig{
			MaxSize:           1024,
			AllowedTypes:      []string{"image/png", "text/plain", "application/pdf"},
			AllowedExtensions: []string{".png", ".txt", ".pdf"},
			MaxWidth:          64,
			MaxHeight:         64,
		},
	}
}

func setupRouterTest(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.L = zap.NewNop()

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

	mr := miniredis.RunT(t)
	cache.UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")

	t.Cleanup(func() {
		cache.UseClient(nil, "")
		logger.L = nil
		_ = sqlDB.Close()
	})

	cfg := newRouterTestConfig()
	cfg.Upload.Dir = t.TempDir()
	mailer := &captureMailer{}
	container, err := provider.Build(cfg, provider.Options{DB: db, Mailer: mailer})
	if err != nil {
		t.Fatalf("build container failed: %v", err)
	}

	return &routerTestEnv{
		db:        db,
		cfg:       cfg,
		container: container,
		engine:    SetupRouter(cfg, container),
		mailer:    mailer,
		redis:     mr,
	}
}

func (e *routerTestEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var env testEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response failed: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func decodeData(t *testing.T, env testEnvelope, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data failed: %v (%s)", err, string(env.Data))
	}
}

// createUser stores a user directly and returns it with an access
// token.
func (e *routerTestEnv) createUser(t *testing.T, username, role string, verified bool) (*models.User, string) {
	t.Helper()
	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  "hash",
		EmailVerified: verified,
		Role:          role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	pair, err := e.container.TokenService.IssueTokenPair(user)
	if err != nil {
		t.Fatalf("issue tokens failed: %v", err)
	}
	return user, pair.AccessToken
}

func (e *routerTestEnv) createProduct(t *testing.T, name, price string, inStock bool) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Price: models.MustMoney(price), InStock: inStock}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func tokenFromMailBody(t *testing.T, body string) string {
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

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
