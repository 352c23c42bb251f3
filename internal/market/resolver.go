package market

import (
	"context"
	"math"
	"strings"

	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/hudgate/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Display names accepted per trade side when scanning a descriptor's outcome
// labels. Matching is trimmed and case-sensitive; first hit wins.
var sideLabels = map[string][]string{
	"YES": {"Up", "Yes", "YES"},
	"NO":  {"Down", "No", "NO"},
}

// Fallback outcome slots for descriptors that omit conventional labels.
// YES takes slot 0, NO slot 1. The positional default is a deliberate,
// load-bearing heuristic: callers depend on it being deterministic, so it
// must not be replaced with smarter inference.
var sideFallbackIndex = map[string]int{
	"YES": 0,
	"NO":  1,
}

// Resolved is the outcome of mapping a market reference plus a side onto a
// concrete tradable token. PriceFromBook is advisory only.
type Resolved struct {
	TokenID       string
	PriceFromBook *float64
}

// Resolver turns a HUD market reference into a token identifier using the
// metadata service.
type Resolver struct {
	api MetadataAPI
}

func NewResolver(api MetadataAPI) *Resolver {
	return &Resolver{api: api}
}

func (r *Resolver) Resolve(ctx context.Context, q Query, side string) (*Resolved, error) {
	if q.ConditionID == "" && q.MarketID == "" {
		metrics.ResolutionFailures.WithLabelValues("no_identifier").Inc()
		return nil, apperrors.NewResolution("no identifier to resolve")
	}

	descriptors, err := r.api.Markets(ctx, q)
	if err != nil {
		metrics.ResolutionFailures.WithLabelValues("lookup").Inc()
		return nil, apperrors.NewResolution(err.Error())
	}
	if len(descriptors) == 0 {
		metrics.ResolutionFailures.WithLabelValues("empty").Inc()
		return nil, apperrors.NewResolution("No market found")
	}

	// Only the first matching record is used.
	desc := descriptors[0]
	slot := outcomeSlot(desc.Outcomes, side)

	if slot >= len(desc.Tokens) || desc.Tokens[slot].ID() == "" {
		metrics.ResolutionFailures.WithLabelValues("missing_token").Inc()
		return nil, apperrors.NewResolution("missing tokenId")
	}

	resolved := &Resolved{TokenID: desc.Tokens[slot].ID()}
	if slot < len(desc.BestAsk) {
		resolved.PriceFromBook = bookPrice(desc.BestAsk[slot])
	}
	return resolved, nil
}

// outcomeSlot scans the outcome labels for one of the side's accepted
// display names and falls back to the side's fixed positional slot.
func outcomeSlot(outcomes []string, side string) int {
	accepted := sideLabels[side]
	for i, outcome := range outcomes {
		name := strings.TrimSpace(outcome)
		for _, label := range accepted {
			if name == label {
				return i
			}
		}
	}
	return sideFallbackIndex[side]
}

// bookPrice defensively parses one best-ask entry: the upstream emits these
// as numbers or decimal strings. Non-numeric or non-finite values are
// dropped; finite values are clamped to [0,1].
func bookPrice(raw interface{}) *float64 {
	var price float64
	switch v := raw.(type) {
	case float64:
		price = v
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		price = d.InexactFloat64()
	default:
		return nil
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil
	}
	if price < 0 {
		price = 0
	}
	if price > 1 {
		price = 1
	}
	return &price
}
