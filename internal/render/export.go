package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/jumpstats/internal/model"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseFormat normalizes a format name.
func ParseFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json or yaml)", name)
	}
}

type recordDoc struct {
	Time       int64   `json:"time" yaml:"time"`
	Distance   float64 `json:"distance" yaml:"distance"`
	Strafes    int     `json:"strafes" yaml:"strafes"`
	Pre        float64 `json:"pre" yaml:"pre"`
	Max        int     `json:"max" yaml:"max"`
	Height     float64 `json:"height" yaml:"height"`
	Sync       int     `json:"sync" yaml:"sync"`
	CrouchJump bool    `json:"crouchjump" yaml:"crouchjump"`
	MinForward bool    `json:"min_forward" yaml:"min_forward"`
}

type windowDoc struct {
	Window string     `json:"window" yaml:"window"`
	Jump   *recordDoc `json:"jump" yaml:"jump"`
}

type countDoc struct {
	Key   string `json:"key" yaml:"key"`
	Count int    `json:"count" yaml:"count"`
}

type reportDoc struct {
	Count             int            `json:"count" yaml:"count"`
	Start             int64          `json:"start" yaml:"start"`
	End               int64          `json:"end" yaml:"end"`
	Longest           []windowDoc    `json:"longest" yaml:"longest"`
	Shortest          recordDoc      `json:"shortest" yaml:"shortest"`
	AverageDistance   float64        `json:"average_distance" yaml:"average_distance"`
	JumpsOver         map[string]int `json:"jumps_over" yaml:"jumps_over"`
	DistanceFrequency []countDoc     `json:"distance_frequency" yaml:"distance_frequency"`
	StrafeFrequency   []countDoc     `json:"strafe_frequency" yaml:"strafe_frequency"`
	ActiveHours       []countDoc     `json:"active_hours" yaml:"active_hours"`
	ActiveDays        []countDoc     `json:"active_days" yaml:"active_days"`
}

func newRecordDoc(r model.Record) recordDoc {
	return recordDoc{
		Time:       r.Timestamp,
		Distance:   r.Distance,
		Strafes:    r.Strafes,
		Pre:        r.Pre,
		Max:        r.MaxVelocity,
		Height:     r.Height,
		Sync:       r.Sync,
		CrouchJump: r.CrouchJump,
		MinForward: r.MinForward,
	}
}

func newReportDoc(report model.Report) reportDoc {
	doc := reportDoc{
		Count:           report.Count,
		Start:           report.Timespan.Start,
		End:             report.Timespan.End,
		Shortest:        newRecordDoc(report.Shortest),
		AverageDistance: report.AverageDistance,
		JumpsOver:       make(map[string]int, len(report.Thresholds)),
	}
	for _, wj := range report.Longest {
		wd := windowDoc{Window: wj.Window.String()}
		if wj.Found() {
			rec := newRecordDoc(wj.Record)
			wd.Jump = &rec
		}
		doc.Longest = append(doc.Longest, wd)
	}
	for _, tc := range report.Thresholds {
		doc.JumpsOver[fmt.Sprintf("%d", tc.Threshold)] = tc.Count
	}
	for _, b := range report.DistanceFrequency {
		doc.DistanceFrequency = append(doc.DistanceFrequency, countDoc{Key: fmt.Sprintf("%d", b.Value), Count: b.Count})
	}
	for _, b := range report.StrafeFrequency {
		doc.StrafeFrequency = append(doc.StrafeFrequency, countDoc{Key: fmt.Sprintf("%d", b.Value), Count: b.Count})
	}
	for _, lc := range report.ActiveHours {
		doc.ActiveHours = append(doc.ActiveHours, countDoc{Key: lc.Label, Count: lc.Count})
	}
	for _, lc := range report.ActiveDays {
		doc.ActiveDays = append(doc.ActiveDays, countDoc{Key: lc.Label, Count: lc.Count})
	}
	return doc
}

// Export writes the report as a JSON or YAML document.
func Export(w io.Writer, report model.Report, format string) error {
	doc := newReportDoc(report)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
