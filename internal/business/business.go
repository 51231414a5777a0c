// Package business holds the merchant's daily sales record and the
// aggregates embedded into every prompt.
//
// A Record is loaded once at startup and never mutated, so it is shared by
// all requests without locking.
package business

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	// RecentWindow is the number of trailing entries summed as recent sales.
	RecentWindow = 7

	// LastPeriodOffset locates the single anchor entry counted as last-period
	// sales, measured back from the end of the record.
	LastPeriodOffset = 31
)

// Order is a single order within a day.
type Order struct {
	TotalAmount float64 `json:"total_amount"`
}

// Day is one daily entry of the record.
type Day struct {
	Date              string  `json:"date,omitempty"`
	Orders            []Order `json:"orders"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// Sales sums the order totals of the day.
func (d Day) Sales() float64 {
	var sum float64
	for _, o := range d.Orders {
		sum += o.TotalAmount
	}
	return sum
}

// Record is an ordered, read-only sequence of daily entries.
type Record struct {
	days []Day
}

// NewRecord wraps days in a Record. The slice is copied.
func NewRecord(days []Day) *Record {
	cp := make([]Day, len(days))
	copy(cp, days)
	return &Record{days: cp}
}

// Load reads a JSON array of daily entries from path.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading business data: %w", err)
	}
	var days []Day
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("decoding business data: %w", err)
	}
	return &Record{days: days}, nil
}

// Len returns the number of daily entries. A nil Record is empty.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.days)
}

// Loaded reports whether the record holds any data.
func (r *Record) Loaded() bool { return r.Len() > 0 }

// Summary holds the three prompt aggregates.
type Summary struct {
	LastPeriodSales   float64
	RecentSales       float64
	AverageOrderValue float64
}

// Summarize computes the aggregates. With fewer than LastPeriodOffset entries
// the last-period figure is zero; with fewer than RecentWindow entries the
// recent window is every available entry.
func (r *Record) Summarize() Summary {
	n := r.Len()
	if n == 0 {
		return Summary{}
	}

	var s Summary
	if n >= LastPeriodOffset {
		s.LastPeriodSales = r.days[n-LastPeriodOffset].Sales()
	}

	recent := r.days
	if n >= RecentWindow {
		recent = r.days[n-RecentWindow:]
	}
	var aovSum float64
	for _, d := range recent {
		s.RecentSales += d.Sales()
		aovSum += d.AverageOrderValue
	}
	s.AverageOrderValue = aovSum / float64(len(recent))
	return s
}
