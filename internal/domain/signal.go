package domain

import "time"

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is a strategy's recommendation for the current bar. The engine never
// mutates a signal after receipt.
type Signal struct {
	Action     Action
	Confidence float64 // 0..1
	Price      float64
	Time       time.Time
}
