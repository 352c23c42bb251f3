package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/GoPolymarket/hudgate/internal/config"
	"github.com/GoPolymarket/hudgate/internal/exchange"
	"github.com/GoPolymarket/hudgate/internal/market"
	"github.com/GoPolymarket/hudgate/internal/model"
	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/hudgate/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

// TradeService runs the request pipeline: validate the instruction, resolve
// the market to a token, compute the clamped price and share size, and
// submit a single IOC order. No state is retained between requests.
type TradeService struct {
	cfg      *config.Config
	resolver *market.Resolver
	exchange exchange.Client
}

func NewTradeService(cfg *config.Config, resolver *market.Resolver, ex exchange.Client) *TradeService {
	return &TradeService{
		cfg:      cfg,
		resolver: resolver,
		exchange: ex,
	}
}

// Validate applies the HUD's field policy. A numeric 0 for amountUsd or ask
// counts as missing — the falsy-means-missing rule is a known sharp edge
// carried over deliberately, not to be fixed here.
func (s *TradeService) Validate(req *model.TradeRequest) error {
	if req.Side == "" || req.AmountUSD == 0 || req.Ask == 0 {
		return apperrors.NewInvalidRequest("missing required fields: side, amountUsd, ask")
	}
	if req.Side != "YES" && req.Side != "NO" {
		return apperrors.NewInvalidRequest("side must be YES or NO")
	}
	if req.Slippage == 0 {
		req.Slippage = s.cfg.Trade.DefaultSlippage
	}
	return nil
}

func (s *TradeService) Execute(ctx context.Context, req model.TradeRequest) (*model.TradeResponse, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(ctx, market.Query{
		ConditionID: req.ConditionID,
		MarketID:    req.MarketID,
	}, req.Side)
	if err != nil {
		return nil, err
	}

	price := exchange.Clamp01(req.Ask * (1 + req.Slippage))
	if math.IsNaN(price) || price <= 0 {
		return nil, apperrors.NewInvalidRequest("invalid computed price")
	}
	shares := req.AmountUSD / price

	sideCode := exchange.SideCodeYes
	if req.Side == "NO" {
		sideCode = exchange.SideCodeNo
	}

	order := &exchange.Order{
		TokenID:       resolved.TokenID,
		Price:         price,
		Size:          shares,
		Side:          sideCode,
		ClientOrderID: fmt.Sprintf("hud-%d", time.Now().UnixNano()),
		TimeInForce:   exchange.TimeInForceIOC,
		PostOnly:      false,
	}

	if err := s.exchange.EnsureAPIKey(ctx); err != nil {
		return nil, apperrors.NewUpstream(err.Error(), err)
	}

	ack, err := s.exchange.SubmitOrder(ctx, order)
	if err != nil {
		return nil, apperrors.NewUpstream(err.Error(), err)
	}

	cost := decimal.NewFromFloat(shares).Mul(decimal.NewFromFloat(price)).InexactFloat64()

	logger.Info("order submitted",
		"token_id", resolved.TokenID,
		"side", req.Side,
		"price", price,
		"shares", shares,
		"client_order_id", order.ClientOrderID,
	)

	return &model.TradeResponse{
		OK:    true,
		Order: ack,
		Fills: model.Fills{
			Shares:   shares,
			AvgPrice: price,
			Cost:     cost,
		},
		Meta: model.Meta{
			TokenID:   resolved.TokenID,
			BookPrice: resolved.PriceFromBook,
		},
	}, nil
}
