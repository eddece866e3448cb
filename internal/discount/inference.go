package discount

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned by NewPolicy for a name it does not know.
var ErrUnknownStrategy = errors.New("unknown discount strategy")

// DefaultStrategyOrder puts price calculation first, then badges, then bare text.
var DefaultStrategyOrder = []string{MethodPricePair, MethodBadge, MethodText}

// Inferrer runs an ordered cascade of strategies; the first hit wins.
type Inferrer struct {
	strategies []Strategy
}

// NewInferrer builds an inferrer from strategies in priority order.
func NewInferrer(strategies ...Strategy) *Inferrer {
	return &Inferrer{strategies: strategies}
}

// DefaultInferrer is the canonical cascade with default bounds and markers.
func DefaultInferrer() *Inferrer {
	inf, _ := NewPolicy(Options{})
	return inf
}

// Infer returns the assessment of the first strategy that fires, or a zero
// assessment when none does.
func (i *Inferrer) Infer(c Candidate) Assessment {
	for _, s := range i.strategies {
		if a, ok := s.Detect(c); ok {
			return a
		}
	}
	return Assessment{}
}

// Strategies returns the names of the cascade in order.
func (i *Inferrer) Strategies() []string {
	names := make([]string, len(i.strategies))
	for n, s := range i.strategies {
		names[n] = s.Name()
	}
	return names
}

// Options configures NewPolicy. Zero values fall back to the defaults.
type Options struct {
	Strategies          []string
	Currencies          []string
	MaxPrice            float64
	Bounds              Bounds
	BadgeMarkers        []string
	BadgeRequireKeyword bool
	// TextPermissive lets the bare-text method accept a percentage without
	// an off/sale keyword.
	TextPermissive bool
}

// NewPolicy builds the cascade named by opts.Strategies.
func NewPolicy(opts Options) (*Inferrer, error) {
	names := opts.Strategies
	if len(names) == 0 {
		names = DefaultStrategyOrder
	}
	bounds := opts.Bounds.orDefault()
	prices := NewPriceParser(opts.Currencies, opts.MaxPrice)

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case MethodPricePair:
			strategies = append(strategies, PricePair{Prices: prices, Bounds: bounds})
		case MethodBadge:
			strategies = append(strategies, BadgeText{
				Markers:        opts.BadgeMarkers,
				RequireKeyword: opts.BadgeRequireKeyword,
				Bounds:         bounds,
			})
		case MethodText:
			strategies = append(strategies, BareText{RequireKeyword: !opts.TextPermissive, Bounds: bounds})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
	}
	return NewInferrer(strategies...), nil
}
