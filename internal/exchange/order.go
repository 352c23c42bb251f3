package exchange

import (
	"context"
	"math"
)

// Numeric side codes defined by the exchange order schema.
const (
	SideCodeYes = 0
	SideCodeNo  = 1
)

// TimeInForceIOC executes immediately against available liquidity and
// cancels any unfilled remainder. Every order this service submits is IOC.
const TimeInForceIOC = "IOC"

// Order is one market order as submitted to the exchange. Constructed fresh
// per request, submitted once, never persisted here.
type Order struct {
	TokenID       string  `json:"token_id"`
	Price         float64 `json:"price"`
	Size          float64 `json:"size"`
	Side          int     `json:"side"`
	ClientOrderID string  `json:"client_order_id"`
	TimeInForce   string  `json:"time_in_force"`
	PostOnly      bool    `json:"post_only"`
}

// Client is the capability surface the trade pipeline consumes: provision the
// signer's API credential (safe to call repeatedly) and submit one order,
// returning the exchange's raw acknowledgement.
type Client interface {
	EnsureAPIKey(ctx context.Context) error
	SubmitOrder(ctx context.Context, order *Order) (interface{}, error)
}

// Clamp01 bounds a price to [0,1]. Non-finite input propagates as NaN so an
// invalid price surfaces instead of silently defaulting.
func Clamp01(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.NaN()
	}
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
