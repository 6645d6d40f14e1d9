package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"FinPulse/internal/domain/models"
	domrepo "FinPulse/internal/domain/repository"

	"github.com/shopspring/decimal"
)

type nopMetrics struct{}

func (nopMetrics) RecordCycle(string, string)              {}
func (nopMetrics) RecordError(string)                      {}
func (nopMetrics) RecordRows(string, string, int)          {}
func (nopMetrics) RecordLastPrice(string, string, float64) {}
func (nopMetrics) RecordLatency(string, float64)           {}

type countingMetrics struct {
	nopMetrics
	mu     sync.Mutex
	cycles map[string]int
}

func (m *countingMetrics) RecordCycle(loop, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cycles == nil {
		m.cycles = map[string]int{}
	}
	m.cycles[loop+"/"+outcome]++
}

func (m *countingMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles[key]
}

type recordingPublisher struct {
	mu     sync.Mutex
	prices []models.PriceObservation
	opps   []models.OpportunityEvent
	err    error
}

func (p *recordingPublisher) PublishPrices(_ context.Context, obs []models.PriceObservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices = append(p.prices, obs...)
	return p.err
}

func (p *recordingPublisher) PublishOpportunity(_ context.Context, ev models.OpportunityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opps = append(p.opps, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fakeAdapter struct {
	name  string
	batch *models.Batch
	err   error
	calls *[]string
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Fetch(context.Context) (*models.Batch, error) {
	if a.calls != nil {
		*a.calls = append(*a.calls, a.name)
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.batch, nil
}

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// downConnector always fails like an unreachable database.
type downConnector struct{}

func (downConnector) Connect(context.Context) (domrepo.Store, error) {
	return nil, errors.Join(models.ErrStoreUnavailable, errors.New("dial tcp: connection refused"))
}

func (downConnector) Close() error { return nil }

func obs(source, ticker, price string, at time.Time) models.PriceObservation {
	return models.PriceObservation{
		Source:      source,
		AssetTicker: ticker,
		Price:       decimal.RequireFromString(price),
		Volume:      decimal.Zero,
		Timestamp:   at.UTC(),
	}
}
