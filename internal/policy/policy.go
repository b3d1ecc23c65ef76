// Package policy holds the penalty tables used to split a fare between the airline
// and the customer. Tables are immutable once built.
package policy

import (
	"fmt"
	"sort"
	"time"
)

// Bucket covers the half-open range (From, To] and retains Percent of the fare.
type Bucket struct {
	From    time.Duration
	To      time.Duration
	Percent int64
}

type Table struct {
	buckets []Bucket
	// beyond is the upper edge of the last bucket; values past it carry no penalty.
	beyond time.Duration
}

// Result of a lookup. Matched is false when the value falls below the first bucket.
type Result struct {
	Percent    int64
	FullRefund bool
	Matched    bool
}

// NewTable builds a table from thresholds in hours. Each threshold opens a bucket that
// ends at the next threshold; the last bucket ends at beyondHours.
func NewTable(thresholds map[int]int64, beyondHours int) (*Table, error) {
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("policy table is empty")
	}
	hours := make([]int, 0, len(thresholds))
	for h := range thresholds {
		if h < 0 {
			return nil, fmt.Errorf("negative threshold %d", h)
		}
		hours = append(hours, h)
	}
	sort.Ints(hours)
	if beyondHours <= hours[len(hours)-1] {
		return nil, fmt.Errorf("full refund bound %dh must exceed last threshold %dh", beyondHours, hours[len(hours)-1])
	}

	t := &Table{beyond: time.Duration(beyondHours) * time.Hour}
	for i, h := range hours {
		pct := thresholds[h]
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("percent %d for threshold %dh out of range", pct, h)
		}
		to := t.beyond
		if i+1 < len(hours) {
			to = time.Duration(hours[i+1]) * time.Hour
		}
		t.buckets = append(t.buckets, Bucket{From: time.Duration(h) * time.Hour, To: to, Percent: pct})
	}
	return t, nil
}

func MustTable(thresholds map[int]int64, beyondHours int) *Table {
	t, err := NewTable(thresholds, beyondHours)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultCancellation: (2h,12h] 80%, (12h,24h] 60%, (24h,48h] 40%, beyond 48h free.
func DefaultCancellation() *Table {
	return MustTable(map[int]int64{2: 80, 12: 60, 24: 40}, 48)
}

// DefaultDelay: (2h,4h] 20%, (4h,6h] 40%, (6h,8h] 60%, beyond 8h full refund.
func DefaultDelay() *Table {
	return MustTable(map[int]int64{2: 20, 4: 40, 6: 60}, 8)
}

// Lookup finds the bucket containing d by exact range match.
func (t *Table) Lookup(d time.Duration) Result {
	if d > t.beyond {
		return Result{FullRefund: true, Matched: true}
	}
	for _, b := range t.buckets {
		if d > b.From && d <= b.To {
			return Result{Percent: b.Percent, Matched: true}
		}
	}
	return Result{}
}

// Floor is the lower edge of the first bucket.
func (t *Table) Floor() time.Duration {
	return t.buckets[0].From
}

func (t *Table) Buckets() []Bucket {
	out := make([]Bucket, len(t.buckets))
	copy(out, t.buckets)
	return out
}

// Split divides fare by percent. The remainder always goes to the refund so the two
// parts sum to the fare.
func Split(fare, percent int64) (penalty, refund int64) {
	penalty = fare * percent / 100
	return penalty, fare - penalty
}
