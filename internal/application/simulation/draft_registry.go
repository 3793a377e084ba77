package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/google/uuid"
)

// Draft registry errors
var (
	ErrDraftNotFound     = shared.NewDomainError("DRAFT_NOT_FOUND", "Draft not found or expired")
	ErrDraftLimitReached = shared.NewDomainError("DRAFT_LIMIT_REACHED", "Too many open drafts")
)

// Registry defaults
const (
	DefaultDraftTTL  = 2 * time.Hour
	DefaultMaxDrafts = 1000
)

type draftEntry struct {
	mu        sync.Mutex
	sim       *simulation.Simulation
	touchedAt time.Time
}

// DraftRegistry keeps in-progress simulations server-side so index-based
// edit commands apply to one consistent item list. Drafts idle longer than
// the TTL are dropped.
type DraftRegistry struct {
	mu        sync.Mutex
	drafts    map[uuid.UUID]*draftEntry
	ttl       time.Duration
	maxDrafts int
	now       func() time.Time
}

// NewDraftRegistry creates a registry. Non-positive limits use the defaults.
func NewDraftRegistry(ttl time.Duration, maxDrafts int) *DraftRegistry {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if maxDrafts <= 0 {
		maxDrafts = DefaultMaxDrafts
	}
	return &DraftRegistry{
		drafts:    make(map[uuid.UUID]*draftEntry),
		ttl:       ttl,
		maxDrafts: maxDrafts,
		now:       time.Now,
	}
}

// Put stores a copy of sim under a new draft id
func (r *DraftRegistry) Put(sim *simulation.Simulation) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.evictExpiredLocked(now)
	if len(r.drafts) >= r.maxDrafts {
		return uuid.Nil, ErrDraftLimitReached
	}

	id := uuid.New()
	r.drafts[id] = &draftEntry{sim: sim.Clone(), touchedAt: now}
	return id, nil
}

// Get returns a copy of the draft
func (r *DraftRegistry) Get(id uuid.UUID) (*simulation.Simulation, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.sim.Clone(), nil
}

// Update runs fn against a copy of the draft and stores the result when fn
// succeeds. Updates to one draft are serialized.
func (r *DraftRegistry) Update(id uuid.UUID, fn func(*simulation.Simulation) (*simulation.Simulation, error)) (*simulation.Simulation, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	next, err := fn(entry.sim.Clone())
	if err != nil {
		return nil, err
	}
	entry.sim = next.Clone()
	return next, nil
}

// Discard drops the draft without persisting it
func (r *DraftRegistry) Discard(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drafts[id]; !ok {
		return r.notFound(id)
	}
	delete(r.drafts, id)
	return nil
}

// Len returns the number of live drafts
func (r *DraftRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictExpiredLocked(r.now())
	return len(r.drafts)
}

func (r *DraftRegistry) entry(id uuid.UUID) (*draftEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.drafts[id]
	if !ok || now.Sub(entry.touchedAt) > r.ttl {
		delete(r.drafts, id)
		return nil, r.notFound(id)
	}
	entry.touchedAt = now
	return entry, nil
}

func (r *DraftRegistry) evictExpiredLocked(now time.Time) {
	for id, entry := range r.drafts {
		if now.Sub(entry.touchedAt) > r.ttl {
			delete(r.drafts, id)
		}
	}
}

func (r *DraftRegistry) notFound(id uuid.UUID) error {
	return shared.NewDomainError(ErrDraftNotFound.Code, fmt.Sprintf("Draft %s not found or expired", id))
}
