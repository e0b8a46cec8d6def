package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/aawalletd/internal/core/domain"
	"github.com/tdex-network/aawalletd/internal/core/ports"
)

// Filter selects providers. Zero values match everything, except Kind and
// ChainID which are always applied.
type Filter struct {
	Kind           domain.ProviderKind
	ChainID        int64
	Sponsorship    domain.Sponsorship
	MinReliability domain.Reliability
}

func (f Filter) match(p domain.ProviderConfig) bool {
	if p.Kind != f.Kind || !p.SupportsChain(f.ChainID) {
		return false
	}
	if f.Sponsorship != "" {
		if p.Paymaster == nil || p.Paymaster.Sponsorship != f.Sponsorship {
			return false
		}
	}
	if f.MinReliability != "" &&
		p.Reliability.Rank() > f.MinReliability.Rank() {
		return false
	}
	return true
}

// Service keeps the table of known bundlers and paymasters.
type Service struct {
	source ports.ProviderSource

	lock      *sync.RWMutex
	providers map[string]domain.ProviderConfig
}

// NewService returns a registry loaded from the given source.
func NewService(ctx context.Context, source ports.ProviderSource) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("missing provider source")
	}

	svc := &Service{
		source:    source,
		lock:      &sync.RWMutex{},
		providers: make(map[string]domain.ProviderConfig),
	}
	if err := svc.Refresh(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// Refresh reloads the provider table from the source. The current table is
// kept if the new one is invalid.
func (s *Service) Refresh(ctx context.Context) error {
	list, err := s.source.Providers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load providers: %w", err)
	}

	providers := make(map[string]domain.ProviderConfig, len(list))
	for _, p := range list {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid provider %q: %w", p.ID, err)
		}
		if _, ok := providers[p.ID]; ok {
			return fmt.Errorf("duplicated provider %q", p.ID)
		}
		providers[p.ID] = p
	}

	s.lock.Lock()
	s.providers = providers
	s.lock.Unlock()

	log.Debugf("loaded %d providers", len(providers))
	return nil
}

// Select returns the providers matching the filter, best first: recommended,
// then popular, then most reliable, then by display name.
func (s *Service) Select(filter Filter) []domain.ProviderConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()

	selected := make([]domain.ProviderConfig, 0)
	for _, p := range s.providers {
		if filter.match(p) {
			selected = append(selected, p)
		}
	}
	sortProviders(selected)
	return selected
}

// Default returns the best provider of the given kind for the chain.
func (s *Service) Default(
	kind domain.ProviderKind, chainID int64,
) (*domain.ProviderConfig, error) {
	selected := s.Select(Filter{Kind: kind, ChainID: chainID})
	if len(selected) <= 0 {
		return nil, fmt.Errorf(
			"%w: no %s for chain %d", domain.ErrProviderNotFound, kind, chainID,
		)
	}
	return &selected[0], nil
}

// Get returns the provider with the given id.
func (s *Service) Get(id string) (*domain.ProviderConfig, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderNotFound, id)
	}
	return &p, nil
}

// Resolve returns the provider with the given id, or the default one if id
// is empty, making sure it is of the expected kind and serves the chain.
func (s *Service) Resolve(
	id string, kind domain.ProviderKind, chainID int64,
) (*domain.ProviderConfig, error) {
	if id == "" {
		return s.Default(kind, chainID)
	}

	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Kind != kind {
		return nil, fmt.Errorf(
			"%w: %s is a %s, not a %s", domain.ErrProviderInvalidKind, id, p.Kind, kind,
		)
	}
	if !p.SupportsChain(chainID) {
		return nil, fmt.Errorf(
			"%w: %s on chain %d", domain.ErrProviderChainNotSupported, id, chainID,
		)
	}
	return p, nil
}

// List returns every known provider sorted like Select.
func (s *Service) List() []domain.ProviderConfig {
	s.lock.RLock()
	defer s.lock.RUnlock()

	list := make([]domain.ProviderConfig, 0, len(s.providers))
	for _, p := range s.providers {
		list = append(list, p)
	}
	sortProviders(list)
	return list
}

func sortProviders(list []domain.ProviderConfig) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Recommended != b.Recommended {
			return a.Recommended
		}
		if a.Popular != b.Popular {
			return a.Popular
		}
		if a.Reliability.Rank() != b.Reliability.Rank() {
			return a.Reliability.Rank() < b.Reliability.Rank()
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID < b.ID
	})
}
