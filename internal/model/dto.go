package model

// TradeRequest is the incoming HUD webhook body. Fields are deliberately not
// bound with `binding:"required"`: the validator applies the HUD's
// falsy-means-missing policy (a numeric 0 counts as absent) which gin's
// binding cannot express.
type TradeRequest struct {
	ConditionID string  `json:"conditionId,omitempty"`
	MarketID    string  `json:"marketId,omitempty"`
	Side        string  `json:"side"` // YES or NO
	Ask         float64 `json:"ask"`
	AmountUSD   float64 `json:"amountUsd"`
	Slippage    float64 `json:"slippage,omitempty"`
}

// Fills reports the execution arithmetic computed from the clamped price.
type Fills struct {
	Shares   float64 `json:"shares"`
	AvgPrice float64 `json:"avgPrice"`
	Cost     float64 `json:"cost"`
}

// Meta carries resolution byproducts surfaced for observability only.
type Meta struct {
	TokenID   string   `json:"tokenId"`
	BookPrice *float64 `json:"bookPrice,omitempty"`
}

// TradeResponse is the success envelope. Order is the raw acknowledgement
// record returned by the exchange, passed through untouched.
type TradeResponse struct {
	OK    bool        `json:"ok"`
	Order interface{} `json:"order"`
	Fills Fills       `json:"fills"`
	Meta  Meta        `json:"meta"`
}
