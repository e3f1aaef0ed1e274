// Package stats contains the jumpstat aggregation engine.
package stats

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/jumpstats/internal/model"
)

// ErrEmptyInput is returned by Finalize when no records were observed.
var ErrEmptyInput = errors.New("no stats to analyze")

// Aggregator accumulates records into a Report in a single pass.
// It is not safe for concurrent use.
type Aggregator struct {
	loc     *time.Location
	cutoffs []time.Time

	count    int
	sum      float64
	timespan model.Timespan
	longest  []model.WindowJump
	shortest model.Record
	over     []int

	distances counter[int]
	strafes   counter[int]
	hours     counter[string]
	days      counter[string]
}

// NewAggregator returns an Aggregator whose time windows end at now.
// Hour and weekday labels use now's location.
func NewAggregator(now time.Time) *Aggregator {
	a := &Aggregator{
		loc:     now.Location(),
		cutoffs: make([]time.Time, len(model.Windows)),
		longest: make([]model.WindowJump, len(model.Windows)),
		over:    make([]int, len(model.Thresholds)),
	}
	for i, w := range model.Windows {
		a.longest[i].Window = w
		if length := w.Length(); length > 0 {
			a.cutoffs[i] = now.Add(-length)
		}
	}
	return a
}

// Observe folds one record into the running statistics.
func (a *Aggregator) Observe(r model.Record) {
	if a.count == 0 {
		a.timespan = model.Timespan{Start: r.Timestamp, End: r.Timestamp}
		a.shortest = r
	} else {
		if r.Timestamp < a.timespan.Start {
			a.timespan.Start = r.Timestamp
		}
		if r.Timestamp > a.timespan.End {
			a.timespan.End = r.Timestamp
		}
		if r.Distance < a.shortest.Distance {
			a.shortest = r
		}
	}
	a.count++
	a.sum += r.Distance

	at := r.Time()
	for i := range a.longest {
		cutoff := a.cutoffs[i]
		if !cutoff.IsZero() && !at.After(cutoff) {
			continue
		}
		if r.Distance > a.longest[i].Record.Distance {
			a.longest[i].Record = r
		}
	}

	for i, threshold := range model.Thresholds {
		if r.Distance > float64(threshold) {
			a.over[i]++
		}
	}

	a.distances.inc(int(r.Distance))
	a.strafes.inc(r.Strafes)
	local := at.In(a.loc)
	a.hours.inc(HourLabel(local))
	a.days.inc(DayLabel(local))
}

// ObserveAll folds a batch of records in order.
func (a *Aggregator) ObserveAll(records []model.Record) {
	for _, r := range records {
		a.Observe(r)
	}
}

// Count returns the number of observed records.
func (a *Aggregator) Count() int {
	return a.count
}

// Finalize derives the report. It does not modify the accumulated state, so it
// may be called repeatedly and observation may continue afterwards.
func (a *Aggregator) Finalize() (model.Report, error) {
	if a.count == 0 {
		return model.Report{}, ErrEmptyInput
	}
	longest := make([]model.WindowJump, len(a.longest))
	copy(longest, a.longest)
	thresholds := make([]model.ThresholdCount, len(model.Thresholds))
	for i, threshold := range model.Thresholds {
		thresholds[i] = model.ThresholdCount{Threshold: threshold, Count: a.over[i]}
	}

	report := model.Report{
		Count:           a.count,
		Timespan:        a.timespan,
		Longest:         longest,
		Shortest:        a.shortest,
		AverageDistance: a.sum / float64(a.count),
		Thresholds:      thresholds,
	}
	for _, e := range a.distances.sorted() {
		report.DistanceFrequency = append(report.DistanceFrequency, model.Bucket{Value: e.key, Count: e.count})
	}
	for _, e := range a.strafes.sorted() {
		report.StrafeFrequency = append(report.StrafeFrequency, model.Bucket{Value: e.key, Count: e.count})
	}
	for _, e := range a.hours.sorted() {
		report.ActiveHours = append(report.ActiveHours, model.LabelCount{Label: e.key, Count: e.count})
	}
	for _, e := range a.days.sorted() {
		report.ActiveDays = append(report.ActiveDays, model.LabelCount{Label: e.key, Count: e.count})
	}
	return report, nil
}

// HourLabel formats the hour of t on a 12-hour clock, e.g. "3 PM" or "12 AM".
func HourLabel(t time.Time) string {
	return t.Format("3 PM")
}

// DayLabel formats the weekday of t as a lowercase abbreviation, e.g. "mon".
func DayLabel(t time.Time) string {
	return strings.ToLower(t.Format("Mon"))
}

// counter counts keys and remembers the order they were first seen in.
type counter[K comparable] struct {
	index   map[K]int
	entries []entry[K]
}

type entry[K comparable] struct {
	key   K
	count int
}

func (c *counter[K]) inc(key K) {
	if c.index == nil {
		c.index = make(map[K]int)
	}
	if i, ok := c.index[key]; ok {
		c.entries[i].count++
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, entry[K]{key: key, count: 1})
}

// sorted returns entries by descending count; equal counts keep first-seen order.
func (c *counter[K]) sorted() []entry[K] {
	out := make([]entry[K], len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].count > out[j].count
	})
	return out
}
