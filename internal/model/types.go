// Package model defines shared data structures.
package model

import "time"

// Record is one validated jumpstat row.
type Record struct {
	Timestamp   int64
	Distance    float64
	Strafes     int
	Pre         float64
	MaxVelocity int
	Height      float64
	Sync        int
	CrouchJump  bool
	MinForward  bool
}

// Time returns the record timestamp as an absolute moment.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// Window is a trailing time range used for recency-scoped maxima.
type Window int

const (
	WindowAllTime Window = iota
	WindowMonth
	WindowWeek
	WindowDay
)

// Windows lists every window in report order.
var Windows = []Window{WindowAllTime, WindowMonth, WindowWeek, WindowDay}

// String returns the window name used in reports.
func (w Window) String() string {
	switch w {
	case WindowAllTime:
		return "all-time"
	case WindowMonth:
		return "past-30-days"
	case WindowWeek:
		return "past-7-days"
	case WindowDay:
		return "past-1-day"
	default:
		return "unknown"
	}
}

// Length returns the trailing duration covered by the window. All-time has no length.
func (w Window) Length() time.Duration {
	switch w {
	case WindowMonth:
		return 30 * 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	case WindowDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Thresholds are the distances counted by the "jumps over" table.
var Thresholds = []int{265, 270, 275, 285}

// Timespan is the range of timestamps seen.
type Timespan struct {
	Start int64
	End   int64
}

// WindowJump pairs a window with its longest jump.
type WindowJump struct {
	Window Window
	Record Record
}

// Found reports whether any record matched the window.
func (wj WindowJump) Found() bool {
	return wj.Record.Timestamp != 0
}

// Bucket counts occurrences of an integer value.
type Bucket struct {
	Value int
	Count int
}

// LabelCount counts occurrences of a label such as "3 PM" or "mon".
type LabelCount struct {
	Label string
	Count int
}

// ThresholdCount counts jumps strictly over a threshold.
type ThresholdCount struct {
	Threshold int
	Count     int
}

// Report holds derived jumpstat analytics.
type Report struct {
	Count             int
	Timespan          Timespan
	Longest           []WindowJump
	Shortest          Record
	AverageDistance   float64
	DistanceFrequency []Bucket
	StrafeFrequency   []Bucket
	Thresholds        []ThresholdCount
	ActiveHours       []LabelCount
	ActiveDays        []LabelCount
}

// LongestIn returns the longest jump for a window, or the zero Record.
func (r Report) LongestIn(w Window) Record {
	for _, wj := range r.Longest {
		if wj.Window == w {
			return wj.Record
		}
	}
	return Record{}
}

// CountOver returns the count for a threshold, or 0 if it is not tracked.
func (r Report) CountOver(threshold int) int {
	for _, tc := range r.Thresholds {
		if tc.Threshold == threshold {
			return tc.Count
		}
	}
	return 0
}

// AnalyzeConfig defines options for a report run.
type AnalyzeConfig struct {
	StatsDir        string
	Paths           []string
	URL             string
	Format          string
	Top             int
	Color           bool
	MaxDownloadSize int64
}

// MergeConfig defines options for merging stat files.
type MergeConfig struct {
	StatsDir string
	Output   string
}
