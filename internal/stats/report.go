package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/jumpstats/internal/model"
	"github.com/verte-zerg/jumpstats/internal/source"
)

// Run is the outcome of aggregating a set of inputs.
type Run struct {
	Report model.Report
	Inputs int
	Read   source.ReadResult
}

// BuildReport reads every input into a fresh Aggregator anchored at now.
// When no record could be read the returned error is ErrEmptyInput and Run
// still carries the read counters.
func BuildReport(ctx context.Context, reader *source.Reader, inputs []source.Input, now time.Time) (Run, error) {
	agg := NewAggregator(now)
	run := Run{Inputs: len(inputs)}
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		res, err := in.Each(ctx, reader, agg.Observe)
		if err != nil {
			return run, err
		}
		run.Read.Add(res)
	}
	report, err := agg.Finalize()
	if err != nil {
		return run, err
	}
	run.Report = report
	return run, nil
}
