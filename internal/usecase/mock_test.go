//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/domain/ports/adapter"
	"applecare-activation/internal/domain/ports/repository"
	"applecare-activation/internal/infra/worker"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// Repositories
// =============================

// ---- Users ----

type memUserRepo struct {
	mu   sync.Mutex
	byID map[string]*model.User
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*model.User{}}
}

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

// ---- Plans ----

type memPlanRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Plan

	errSave error
}

var _ repository.PlanRepository = (*memPlanRepo)(nil)

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{byID: map[string]*model.Plan{}}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	if m.errSave != nil {
		return m.errSave
	}
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

// ---- Activation requests ----

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

// ---- Settings ----

type memSettingsRepo struct {
	mu sync.Mutex
	s  *model.Settings
}

var _ repository.SettingsRepository = (*memSettingsRepo)(nil)

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{}
}

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

// ---- Transaction manager ----

// memTxManager just runs fn; the in-memory repos have no transactions.
type memTxManager struct{}

var _ repository.TransactionManager = (*memTxManager)(nil)

func (memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

type mockMailer struct {
	mu         sync.Mutex
	Activation []*model.ActivationRequest
	Approvals  []*model.ActivationRequest
	LastURLs   [2]string

	SendActivationFunc func(ctx context.Context, s *model.Settings, r *model.ActivationRequest, invoicePath string) error
}

var _ adapter.Mailer = (*mockMailer)(nil)

func (m *mockMailer) SendActivation(ctx context.Context, s *model.Settings, r *model.ActivationRequest, invoicePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendActivationFunc != nil {
		if err := m.SendActivationFunc(ctx, s, r, invoicePath); err != nil {
			return err
		}
	}
	m.Activation = append(m.Activation, r)
	return nil
}

func (m *mockMailer) SendApprovalRequest(ctx context.Context, s *model.Settings, r *model.ActivationRequest, approveURL, declineURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Approvals = append(m.Approvals, r)
	m.LastURLs = [2]string{approveURL, declineURL}
	return nil
}

type mockTicketClient struct {
	mu      sync.Mutex
	Created []*model.ActivationRequest
	NextID  string
	Err     error
}

var _ adapter.TicketClient = (*mockTicketClient)(nil)

func (m *mockTicketClient) CreateTicket(ctx context.Context, s *model.Settings, r *model.ActivationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Created = append(m.Created, r)
	if m.NextID == "" {
		return "100001", nil
	}
	return m.NextID, nil
}

type mockInvoiceGenerator struct {
	Err error
}

var _ adapter.InvoiceGenerator = (*mockInvoiceGenerator)(nil)

func (m *mockInvoiceGenerator) Generate(r *model.ActivationRequest) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "invoices/invoice_" + r.ID + ".pdf", nil
}

// syncQueue runs submitted tasks inline so tests observe side effects
// without timing games.
type syncQueue struct{}

func (syncQueue) Submit(task worker.Task) error {
	return task(context.Background())
}
