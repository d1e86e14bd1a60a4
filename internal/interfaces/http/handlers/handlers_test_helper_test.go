package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pay-chain.backend/internal/config"
	"pay-chain.backend/internal/domain/entities"
	domainerrors "pay-chain.backend/internal/domain/errors"
	"pay-chain.backend/internal/domain/repositories"
	"pay-chain.backend/internal/interfaces/http/middleware"
	"pay-chain.backend/internal/usecases"
	"pay-chain.backend/pkg/crypto"
	"pay-chain.backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryAccountRepo is an in-memory AccountRepository with the same
// conditional-update semantics as the SQL implementation.
type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*entities.Account
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[uuid.UUID]*entities.Account)}
}

func cloneAccount(a *entities.Account) *entities.Account {
	cp := *a
	if a.Pending != nil {
		p := *a.Pending
		cp.Pending = &p
	}
	return &cp
}

func (r *memoryAccountRepo) Create(_ context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domainerrors.ErrAlreadyExists
		}
	}
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}

func (r *memoryAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryAccountRepo) GetByEmail(_ context.Context, email string) (*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memoryAccountRepo) SetPendingAction(_ context.Context, id uuid.UUID, action entities.PendingAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	p := action
	a.Pending = &p
	return nil
}

func (r *memoryAccountRepo) ConsumeVerification(_ context.Context, id uuid.UUID, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.IsVerified || !a.Pending.Matches(entities.PendingEmailVerification, code, now) {
		return domainerrors.ErrNotFound
	}
	a.IsVerified = true
	a.Pending = nil
	return nil
}

func (r *memoryAccountRepo) ConsumeDeletion(_ context.Context, id uuid.UUID, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.IsDeleted || !a.Pending.Matches(entities.PendingAccountDeletion, code, now) {
		return domainerrors.ErrNotFound
	}
	a.IsDeleted = true
	a.Pending = nil
	return nil
}

func (r *memoryAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *memoryAccountRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *memoryAccountRepo) ClearDeletion(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	a.IsDeleted = false
	return nil
}

func (r *memoryAccountRepo) ClearExpiredPendingActions(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	for _, a := range r.accounts {
		if a.Pending != nil && !a.Pending.ExpiresAt.After(now) {
			a.Pending = nil
			cleared++
		}
	}
	return cleared, nil
}

func (r *memoryAccountRepo) List(_ context.Context, search string, limit, offset int) ([]*entities.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entities.Account
	for _, a := range r.accounts {
		if search == "" || strings.Contains(a.Email, search) || strings.Contains(a.Name, search) {
			all = append(all, cloneAccount(a))
		}
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

// captureNotifier records every dispatched notification.
type captureNotifier struct {
	mu   sync.Mutex
	sent []capturedNotification
}

type capturedNotification struct {
	Kind      repositories.NotificationKind
	Recipient string
	Payload   map[string]string
}

func (n *captureNotifier) Send(_ context.Context, kind repositories.NotificationKind, recipient string, payload map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedNotification{Kind: kind, Recipient: recipient, Payload: payload})
}

func (n *captureNotifier) last() capturedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testServer struct {
	router   *gin.Engine
	repo     *memoryAccountRepo
	notifier *captureNotifier
	tokens   *jwt.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.AuthConfig{
		BcryptCost:      bcrypt.MinCost,
		CodeLength:      6,
		VerificationTTL: 10 * time.Minute,
		DeletionCodeTTL: 10 * time.Minute,
		SessionTokenTTL: 6 * time.Hour,
		ResetTokenTTL:   15 * time.Minute,
	}

	repo := newMemoryAccountRepo()
	notifier := &captureNotifier{}
	tokens := jwt.NewTokenService("test-secret")
	hasher := crypto.NewPasswordHasher(bcrypt.MinCost)

	authUC := usecases.NewAuthUsecase(repo, notifier, tokens, hasher, cfg)
	accountUC := usecases.NewAccountUsecase(repo, notifier, cfg)

	authHandler := NewAuthHandler(authUC)
	accountHandler := NewAccountHandler(accountUC)
	adminHandler := NewAdminHandler(accountUC)

	r := gin.New()
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)
	auth.POST("/resend-verification", authHandler.ResendVerification)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	account := v1.Group("/account", middleware.AuthMiddleware(tokens))
	account.GET("/me", accountHandler.Me)
	account.POST("/delete/request", accountHandler.RequestDeletion)
	account.POST("/delete/confirm", accountHandler.ConfirmDeletion)

	admin := v1.Group("/admin", middleware.AuthMiddleware(tokens))
	admin.GET("/accounts", adminHandler.ListAccounts)

	return &testServer{router: r, repo: repo, notifier: notifier, tokens: tokens}
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", `{"email":"`+email+`","password":"`+password+`"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	return s.notifier.last().Payload["code"]
}

func (s *testServer) registerVerified(t *testing.T, email, password string) {
	t.Helper()
	code := s.register(t, email, password)
	w := s.do(http.MethodPost, "/api/v1/auth/verify-email", `{"email":"`+email+`","verificationCode":"`+code+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify %s: status %d body %s", email, w.Code, w.Body.String())
	}
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}
	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return envelope.Data.Token
}
