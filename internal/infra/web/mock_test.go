//go:build !integration

package web_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
	"applecare-activation/internal/domain/ports/repository"
	"applecare-activation/internal/infra/web"
	"applecare-activation/internal/infra/worker"
	"applecare-activation/internal/usecase"
)

// ---- In-memory repositories ----

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo { return &memUserRepo{byID: map[string]*model.User{}} }

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, tx repository.Tx, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memPlanRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Plan
}

var _ repository.PlanRepository = (*memPlanRepo)(nil)

func newMemPlanRepo() *memPlanRepo { return &memPlanRepo{byID: map[string]*model.Plan{}} }

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) FindBySKU(ctx context.Context, tx repository.Tx, sku string) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPlanRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Plan, 0, len(m.byID))
	for _, p := range m.byID {
		if activeOnly && !p.Active {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memPlanRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

type memRequestRepo struct {
	mu   sync.Mutex
	byID map[string]*model.ActivationRequest
}

var _ repository.ActivationRequestRepository = (*memRequestRepo)(nil)

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{byID: map[string]*model.ActivationRequest{}}
}

func (m *memRequestRepo) Save(ctx context.Context, tx repository.Tx, r *model.ActivationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.byID[r.ID] = &cp
	return nil
}

func (m *memRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ActivationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRequestRepo) List(ctx context.Context, tx repository.Tx, status string) ([]*model.ActivationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ActivationRequest, 0, len(m.byID))
	for _, r := range m.byID {
		if status != "" && r.Status != status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRequestRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	return nil
}

func (m *memRequestRepo) SetEmailSent(ctx context.Context, tx repository.Tx, id string, sent bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.EmailSent = sent
	return nil
}

func (m *memRequestRepo) SetTicketID(ctx context.Context, tx repository.Tx, id, ticketID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.OSTicketID = ticketID
	return nil
}

func (m *memRequestRepo) SetInvoicePath(ctx context.Context, tx repository.Tx, id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.InvoicePath = path
	return nil
}

func (m *memRequestRepo) Counts(ctx context.Context, tx repository.Tx) (*repository.RequestCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &repository.RequestCounts{}
	for _, r := range m.byID {
		c.Total++
		switch r.Status {
		case model.StatusPendingApproval:
			c.PendingApproval++
		case model.StatusPending:
			c.Pending++
		case model.StatusActivated:
			c.Activated++
		case model.StatusPaymentPending:
			c.PaymentPending++
		case model.StatusDeclined:
			c.Declined++
		}
	}
	return c, nil
}

type memSettingsRepo struct {
	mu sync.Mutex
	s  *model.Settings
}

var _ repository.SettingsRepository = (*memSettingsRepo)(nil)

func (m *memSettingsRepo) Get(ctx context.Context, tx repository.Tx) (*model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		m.s = model.DefaultSettings()
	}
	cp := *m.s
	return &cp, nil
}

func (m *memSettingsRepo) Save(ctx context.Context, tx repository.Tx, s *model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

type memTxManager struct{}

var _ repository.TransactionManager = (*memTxManager)(nil)

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// ---- Adapters ----

type noopMailer struct{}

var _ adapter.Mailer = (*noopMailer)(nil)

func (noopMailer) SendActivation(context.Context, *model.Settings, *model.ActivationRequest, string) error {
	return nil
}

func (noopMailer) SendApprovalRequest(context.Context, *model.Settings, *model.ActivationRequest, string, string) error {
	return nil
}

type noopTicketClient struct{}

var _ adapter.TicketClient = (*noopTicketClient)(nil)

func (noopTicketClient) CreateTicket(context.Context, *model.Settings, *model.ActivationRequest) (string, error) {
	return "100001", nil
}

type stubInvoiceGenerator struct{ path string }

var _ adapter.InvoiceGenerator = (*stubInvoiceGenerator)(nil)

func (s stubInvoiceGenerator) Generate(*model.ActivationRequest) (string, error) {
	return s.path, nil
}

type syncQueue struct{}

func (syncQueue) Submit(task worker.Task) error { return task(context.Background()) }

// ---- Test server wiring ----

type testEnv struct {
	users     *memUserRepo
	plans     *memPlanRepo
	requests  *memRequestRepo
	settings  *memSettingsRepo
	auth      *web.AuthManager
	requestUC usecase.RequestUseCase
	router    *chi.Mux
}

const testSecret = "web-test-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	env := &testEnv{
		users:    newMemUserRepo(),
		plans:    newMemPlanRepo(),
		requests: newMemRequestRepo(),
		settings: &memSettingsRepo{},
		auth:     web.NewAuthManager(testSecret, time.Hour),
	}

	authUC := usecase.NewAuthUseCase(env.users)
	planUC := usecase.NewPlanUseCase(env.plans)
	settingsUC := usecase.NewSettingsUseCase(env.settings)
	statsUC := usecase.NewStatsUseCase(env.requests)
	env.requestUC = usecase.NewRequestUseCase(
		env.requests, env.plans, env.settings, memTxManager{},
		stubInvoiceGenerator{}, noopMailer{}, noopTicketClient{}, syncQueue{},
		testSecret, "http://localhost:8080", &logger,
	)

	srv := web.NewServer(
		authUC, planUC, env.requestUC, settingsUC, statsUC,
		env.auth, nil, 10, t.TempDir(), &logger,
	)
	env.router = chi.NewRouter()
	srv.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) seedAdmin(t *testing.T) (id, token string) {
	t.Helper()
	hash, err := usecase.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := model.NewUser("admin-1", "admin@example.com", "Administrator", hash)
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if err := e.users.Save(context.Background(), repository.NoTX, u); err != nil {
		t.Fatalf("save admin: %v", err)
	}
	tok, err := e.auth.Mint(u.ID)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	return u.ID, tok
}

func (e *testEnv) seedPlan(t *testing.T) *model.Plan {
	t.Helper()
	p, err := model.NewPlan("", "AppleCare+ for iPhone", "S9527ZM/A", "AC-IP", "2 years", 14900)
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if err := e.plans.Save(context.Background(), repository.NoTX, p); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	return p
}
