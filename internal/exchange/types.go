package exchange

import "fmt"

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order is a resting exchange order. Orders belonging to a bracket (OCO)
// pair share a positive OrderListID.
type Order struct {
	Symbol      string
	OrderID     int64
	OrderListID int64
	Side        string
	Type        string
	Price       float64
	StopPrice   float64
	OrigQty     float64
	Status      string
}

// MarketOrder is the fill summary of an executed market order.
type MarketOrder struct {
	OrderID     int64
	ExecutedQty float64
	QuoteQty    float64
	AvgPrice    float64
}

// SymbolRules are the trading filters the exchange enforces per symbol.
type SymbolRules struct {
	TickSize    float64
	StepSize    float64
	MinNotional float64
	MinQty      float64
	MinPrice    float64
	MaxPrice    float64
}

// APIError is an error response from the exchange REST API. Order
// submission errors are surfaced to the notifier with the message inlined.
type APIError struct {
	Code    int64  `json:"code"`
	Message string `json:"msg"`
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange api error: http %d code=%d %s", e.Status, e.Code, e.Message)
}
