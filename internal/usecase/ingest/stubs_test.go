package ingest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/infra/favicon"
	"news-aggregator/internal/infra/search"
	"news-aggregator/internal/repository"
)

/* ───────── stubs ───────── */

type stubSearcher struct {
	mu       sync.Mutex
	results  map[string][]search.Result
	errs     map[string]error
	panicOn  string
	received []search.Query
}

func (s *stubSearcher) Search(_ context.Context, q search.Query) ([]search.Result, error) {
	s.mu.Lock()
	s.received = append(s.received, q)
	s.mu.Unlock()

	if q.Text == s.panicOn {
		panic("search exploded")
	}
	if err := s.errs[q.Text]; err != nil {
		return nil, err
	}
	return s.results[q.Text], nil
}

type stubResolver struct {
	byBase   map[string]favicon.Resolution
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
	sessions atomic.Int32
	hold     chan struct{}
}

func (r *stubResolver) NewSession() *http.Client {
	r.sessions.Add(1)
	return &http.Client{}
}

func (r *stubResolver) Resolve(_ context.Context, _ *http.Client, baseURL string) favicon.Resolution {
	r.calls.Add(1)
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if r.hold != nil {
		<-r.hold
	}
	if res, ok := r.byBase[baseURL]; ok {
		return res
	}
	return favicon.Resolution{Status: favicon.StatusNotFound}
}

var errDiskFull = errors.New("disk full")

// memRepo mimics the url UNIQUE constraint of the news table.
type memRepo struct {
	mu     sync.Mutex
	rows   map[string]entity.NewsRecord
	order  []string
	failOn map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]entity.NewsRecord)}
}

func (m *memRepo) Insert(_ context.Context, n *entity.NewsRecord) (repository.InsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[n.URL] {
		return repository.InsertOutcomeFailed, errDiskFull
	}
	if _, exists := m.rows[n.URL]; exists {
		return repository.InsertOutcomeDuplicate, nil
	}
	m.rows[n.URL] = *n
	m.order = append(m.order, n.URL)
	return repository.InsertOutcomeInserted, nil
}

func (m *memRepo) Sample(_ context.Context, limit int) ([]*entity.NewsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.NewsRecord, 0, limit)
	for _, u := range m.order {
		if len(out) == limit {
			break
		}
		rec := m.rows[u]
		out = append(out, &rec)
	}
	return out, nil
}

func (m *memRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *memRepo) get(url string) (entity.NewsRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[url]
	return rec, ok
}

func result(url, image string) search.Result {
	return search.Result{Title: "title " + url, URL: url, Image: image, Date: "2024-01-01T00:00:00Z", Source: "src", Body: "body"}
}
