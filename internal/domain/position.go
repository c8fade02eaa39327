package domain

import "time"

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Position is the single open position a simulation may hold. It is owned
// exclusively by the engine for the duration of a run.
type Position struct {
	Side       Side
	EntryPrice float64
	EntryTime  time.Time
	Size       float64
}

// PnL is the profit of closing the position at exitPrice.
func (p *Position) PnL(exitPrice float64) float64 {
	direction := 1.0
	if p.Side == SideShort {
		direction = -1.0
	}
	return direction * p.Size * (exitPrice - p.EntryPrice)
}

// PricePoint is one side of a trade.
type PricePoint struct {
	Price float64
	Time  time.Time
}

// Trade is a closed position. Immutable once appended to the ledger.
type Trade struct {
	Entry PricePoint
	Exit  PricePoint
	PnL   float64
	Side  Side
}
