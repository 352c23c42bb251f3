package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/GoPolymarket/hudgate/internal/config"
	"github.com/GoPolymarket/hudgate/internal/exchange"
	"github.com/GoPolymarket/hudgate/internal/market"
	"github.com/GoPolymarket/hudgate/internal/model"
	"github.com/GoPolymarket/hudgate/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetadataAPI struct {
	descriptors []market.Descriptor
	err         error
}

func (f *fakeMetadataAPI) Markets(_ context.Context, _ market.Query) ([]market.Descriptor, error) {
	return f.descriptors, f.err
}

type fakeExchange struct {
	ensureErr  error
	submitErr  error
	ack        interface{}
	lastOrder  *exchange.Order
	submitted  int
	ensured    int
}

func (f *fakeExchange) EnsureAPIKey(_ context.Context) error {
	f.ensured++
	return f.ensureErr
}

func (f *fakeExchange) SubmitOrder(_ context.Context, order *exchange.Order) (interface{}, error) {
	f.submitted++
	f.lastOrder = order
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.ack, nil
}

func yesNoDescriptor() market.Descriptor {
	return market.Descriptor{
		Outcomes: []string{"Yes", "No"},
		Tokens:   []market.Token{{TokenID: "tok-yes"}, {TokenID: "tok-no"}},
	}
}

func newTestService(api market.MetadataAPI, ex exchange.Client) *TradeService {
	cfg := &config.Config{}
	cfg.Trade.DefaultSlippage = 0.01
	return NewTradeService(cfg, market.NewResolver(api), ex)
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name string
		req  model.TradeRequest
	}{
		{"empty request", model.TradeRequest{}},
		{"missing side", model.TradeRequest{Ask: 0.5, AmountUSD: 100}},
		{"zero amount", model.TradeRequest{Side: "YES", Ask: 0.5}},
		{"zero ask", model.TradeRequest{Side: "YES", AmountUSD: 100}},
	}

	svc := newTestService(&fakeMetadataAPI{}, &fakeExchange{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(&tc.req)
			require.Error(t, err)
			appErr := apperrors.Wrap(err)
			assert.Equal(t, apperrors.ErrInvalidRequest, appErr.Type)
			assert.Equal(t, "missing required fields: side, amountUsd, ask", appErr.Message)
		})
	}
}

func TestValidate_BadSide(t *testing.T) {
	svc := newTestService(&fakeMetadataAPI{}, &fakeExchange{})
	err := svc.Validate(&model.TradeRequest{Side: "MAYBE", Ask: 0.5, AmountUSD: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side must be YES or NO")
}

func TestValidate_DefaultSlippage(t *testing.T) {
	svc := newTestService(&fakeMetadataAPI{}, &fakeExchange{})

	req := model.TradeRequest{Side: "YES", Ask: 0.5, AmountUSD: 100}
	require.NoError(t, svc.Validate(&req))
	assert.Equal(t, 0.01, req.Slippage)

	req = model.TradeRequest{Side: "YES", Ask: 0.5, AmountUSD: 100, Slippage: 0.05}
	require.NoError(t, svc.Validate(&req))
	assert.Equal(t, 0.05, req.Slippage)
}

func TestExecute_HappyPath(t *testing.T) {
	ex := &fakeExchange{ack: map[string]interface{}{"orderID": "0xfeed", "success": true}}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, ex)

	resp, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.5,
		AmountUSD:   100,
		Slippage:    0.02,
	})
	require.NoError(t, err)

	// 0.5 * 1.02 = 0.51; 100 / 0.51 ≈ 196.08 shares.
	assert.True(t, resp.OK)
	assert.InDelta(t, 0.51, resp.Fills.AvgPrice, 1e-9)
	assert.InDelta(t, 196.0784313, resp.Fills.Shares, 1e-6)
	assert.InDelta(t, 100, resp.Fills.Cost, 1e-6)
	assert.Equal(t, "tok-yes", resp.Meta.TokenID)
	assert.Equal(t, ex.ack, resp.Order)

	require.NotNil(t, ex.lastOrder)
	assert.Equal(t, "tok-yes", ex.lastOrder.TokenID)
	assert.Equal(t, exchange.SideCodeYes, ex.lastOrder.Side)
	assert.Equal(t, exchange.TimeInForceIOC, ex.lastOrder.TimeInForce)
	assert.False(t, ex.lastOrder.PostOnly)
	assert.True(t, strings.HasPrefix(ex.lastOrder.ClientOrderID, "hud-"))
	assert.Equal(t, 1, ex.ensured)
	assert.Equal(t, 1, ex.submitted)
}

func TestExecute_SideNo(t *testing.T) {
	ex := &fakeExchange{ack: map[string]interface{}{"success": true}}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, ex)

	resp, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "NO",
		Ask:         0.4,
		AmountUSD:   50,
	})
	require.NoError(t, err)

	assert.Equal(t, "tok-no", resp.Meta.TokenID)
	assert.Equal(t, exchange.SideCodeNo, ex.lastOrder.Side)
	// Default slippage 0.01 applies: 0.4 * 1.01 = 0.404.
	assert.InDelta(t, 0.404, resp.Fills.AvgPrice, 1e-9)
}

func TestExecute_PriceClampedToOne(t *testing.T) {
	ex := &fakeExchange{ack: map[string]interface{}{}}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, ex)

	resp, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.99,
		AmountUSD:   100,
		Slippage:    0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Fills.AvgPrice)
	assert.InDelta(t, 100, resp.Fills.Shares, 1e-9)
}

func TestExecute_NegativeAskRejected(t *testing.T) {
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, &fakeExchange{})

	_, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         -0.5,
		AmountUSD:   100,
	})
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrInvalidRequest, appErr.Type)
	assert.Equal(t, "invalid computed price", appErr.Message)
}

func TestExecute_ResolutionFailure(t *testing.T) {
	ex := &fakeExchange{}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{}}, ex)

	_, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.5,
		AmountUSD:   100,
	})
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrResolution, appErr.Type)
	assert.Equal(t, 0, ex.submitted)
}

func TestExecute_EnsureAPIKeyFailure(t *testing.T) {
	ex := &fakeExchange{ensureErr: errors.New("credential derivation failed")}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, ex)

	_, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.5,
		AmountUSD:   100,
	})
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrUpstream, appErr.Type)
	assert.Equal(t, 0, ex.submitted)
}

func TestExecute_SubmissionFailure(t *testing.T) {
	ex := &fakeExchange{submitErr: errors.New("polymarket api error: not enough balance")}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{yesNoDescriptor()}}, ex)

	_, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.5,
		AmountUSD:   100,
	})
	require.Error(t, err)
	appErr := apperrors.Wrap(err)
	assert.Equal(t, apperrors.ErrUpstream, appErr.Type)
	assert.Contains(t, appErr.Message, "not enough balance")
}

func TestExecute_BookPricePassesThrough(t *testing.T) {
	desc := yesNoDescriptor()
	desc.BestAsk = []interface{}{0.48, 0.55}
	ex := &fakeExchange{ack: map[string]interface{}{}}
	svc := newTestService(&fakeMetadataAPI{descriptors: []market.Descriptor{desc}}, ex)

	resp, err := svc.Execute(context.Background(), model.TradeRequest{
		ConditionID: "0xabc",
		Side:        "YES",
		Ask:         0.5,
		AmountUSD:   100,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Meta.BookPrice)
	assert.InDelta(t, 0.48, *resp.Meta.BookPrice, 1e-9)
}
