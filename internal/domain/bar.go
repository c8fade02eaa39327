package domain

import "time"

// Bar is one sampled market observation. Bars are immutable once produced by
// the data source and must arrive ordered by time.
type Bar struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}
