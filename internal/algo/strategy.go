// Package algo contains the rule-based signal strategies. Strategies are
// looked up by name in a registry, so adding one means implementing the
// Strategy interface and registering it under a key.
package algo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomislav-safran/vibe-trader/internal/exchange"
	"github.com/tomislav-safran/vibe-trader/internal/position"
)

// Strategy inspects market data for one symbol and either proposes a trade
// or returns (nil, nil) when no setup is present.
type Strategy interface {
	Run(ctx context.Context, symbol string) (*position.ProposedPosition, error)
}

// Registry maps strategy names to implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds the registry with every built-in strategy wired to
// the given exchange.
func NewRegistry(ex exchange.Exchange) *Registry {
	return &Registry{
		strategies: map[string]Strategy{
			EngulfingCandle: NewEngulfingCandleStrategy(ex),
		},
	}
}

// Lookup returns the named strategy or an error listing the known names.
func (r *Registry) Lookup(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		names := make([]string, 0, len(r.strategies))
		for n := range r.strategies {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("no strategy found with name %q, available: %s", name, strings.Join(names, ", "))
	}
	return s, nil
}
