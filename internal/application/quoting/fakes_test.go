package quoting_test

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/entity"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

// fakeQuoteRepo repositorio en memoria con compare-and-set sobre el estado.
type fakeQuoteRepo struct {
	mu     sync.Mutex
	quotes map[string]entity.Quote
	// beforeCAS se ejecuta justo antes de comparar el estado (simula una carrera).
	beforeCAS func(r *fakeQuoteRepo, id string)
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[string]entity.Quote{}}
}

func (r *fakeQuoteRepo) Create(_ context.Context, q *entity.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.quotes {
		if existing.Number == q.Number {
			return domain.ErrDuplicate
		}
	}
	r.quotes[q.ID] = *q
	return nil
}

func (r *fakeQuoteRepo) GetByID(_ context.Context, id string) (*entity.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *fakeQuoteRepo) GetByNumber(_ context.Context, number string) (*entity.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.Number == number {
			q := q
			return &q, nil
		}
	}
	return nil, nil
}

func (r *fakeQuoteRepo) List(_ context.Context, f repository.QuoteFilter) ([]*entity.Quote, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Quote
	for _, q := range r.quotes {
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && q.CustomerID != f.CustomerID {
			continue
		}
		q := q
		out = append(out, &q)
	}
	return out, len(out), nil
}

func (r *fakeQuoteRepo) cas(q *entity.Quote, expected string) error {
	if r.beforeCAS != nil {
		r.beforeCAS(r, q.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.quotes[q.ID]
	if !ok || cur.Status != expected {
		return domain.ErrConflict
	}
	r.quotes[q.ID] = *q
	return nil
}

func (r *fakeQuoteRepo) UpdatePricing(_ context.Context, q *entity.Quote, expected string) error {
	return r.cas(q, expected)
}

func (r *fakeQuoteRepo) UpdateStatus(_ context.Context, q *entity.Quote, expected string) error {
	return r.cas(q, expected)
}

func (r *fakeQuoteRepo) ListExpirable(_ context.Context, now time.Time, limit int) ([]*entity.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Quote
	for _, q := range r.quotes {
		if (q.Status == entity.QuoteStatusDraft || q.Status == entity.QuoteStatusSent) && q.ValidUntil.Before(now) {
			q := q
			out = append(out, &q)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeQuoteRepo) CountByBlend(_ context.Context, blendID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, q := range r.quotes {
		if q.BlendID == blendID {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuoteRepo) setStatus(id, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.quotes[id]
	q.Status = status
	r.quotes[id] = q
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*entity.ActivityLog
}

func (l *fakeLogRepo) Append(_ context.Context, e *entity.ActivityLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeLogRepo) actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeTx struct {
	quotes *fakeQuoteRepo
	logs   *fakeLogRepo
}

func (t *fakeTx) RunQuoting(_ context.Context, fn func(repository.QuoteRepository, repository.ActivityLogRepository) error) error {
	return fn(t.quotes, t.logs)
}

type fakeCustomers struct {
	byID map[string]*entity.Customer
}

func (f *fakeCustomers) Create(_ context.Context, c *entity.Customer) error {
	f.byID[c.ID] = c
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	return f.byID[id], nil
}

func (f *fakeCustomers) GetByCode(context.Context, string) (*entity.Customer, error) { return nil, nil }

func (f *fakeCustomers) List(context.Context, int, int) ([]*entity.Customer, error) { return nil, nil }

func (f *fakeCustomers) Update(_ context.Context, c *entity.Customer) error {
	f.byID[c.ID] = c
	return nil
}

type fakeBlends struct {
	byID map[string]*entity.Blend
}

func (f *fakeBlends) Resolve(_ context.Context, id string) (*entity.Blend, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "blend", ID: id}
	}
	return b, nil
}

type fakeIngredients struct {
	byID map[string]*entity.Ingredient
}

func (f *fakeIngredients) GetMany(_ context.Context, ids []string) (map[string]*entity.Ingredient, error) {
	out := make(map[string]*entity.Ingredient, len(ids))
	for _, id := range ids {
		ing, ok := f.byID[id]
		if !ok {
			return nil, &domain.NotFoundError{Entity: "ingredient", ID: id}
		}
		out[id] = ing
	}
	return out, nil
}

type countingRecorder struct {
	mu          sync.Mutex
	created     int
	transitions map[string]int
	allocated   []int
	failures    int
	expired     int
}

func newRecorder() *countingRecorder {
	return &countingRecorder{transitions: map[string]int{}}
}

func (r *countingRecorder) QuoteCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) QuoteTransitioned(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[from+"->"+to]++
}

func (r *countingRecorder) NumberAllocated(attempts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allocated = append(r.allocated, attempts)
}

func (r *countingRecorder) NumberAllocationFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *countingRecorder) QuotesExpired(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired += n
}
