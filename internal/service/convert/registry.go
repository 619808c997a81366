package convert

import (
	"fmt"
	"sync"

	"docmorph/internal/domain/services"
)

// StrategyRegistry maps routing-table strategy names to implementations.
// Registration happens during startup wiring; lookups are concurrent.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]services.ConversionStrategy
}

func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[string]services.ConversionStrategy)}
}

// Register binds a strategy name. Re-registering a name replaces the previous
// strategy.
func (r *StrategyRegistry) Register(name string, strategy services.ConversionStrategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[name] = strategy
}

// Get resolves a strategy name from the routing table.
func (r *StrategyRegistry) Get(name string) (services.ConversionStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	strategy, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("no strategy registered for %q", name)
	}
	return strategy, nil
}
