package lifecycle

import (
	"errors"
	"fmt"
)

// Stage names the step of a batch at which a region's handling stopped.
type Stage string

const (
	StageCreate  Stage = "create"
	StageResolve Stage = "resolve"
	StageLoad    Stage = "load"
	StagePublish Stage = "publish"
	StageClear   Stage = "clear"
	StageDone    Stage = "done"
)

// Outcome is what happened to one region while handling an event.
type Outcome struct {
	Region string
	// Stage is StageDone on success, otherwise the step that failed.
	Stage  Stage
	Loaded int
	Err    error
}

// OK reports whether the region was handled without error.
func (o Outcome) OK() bool { return o.Err == nil }

// Report collects the per-region outcomes of one event.
type Report struct {
	Kind     Kind
	Outcomes []Outcome
}

// Failed returns the outcomes that carry an error.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Err joins every per-region failure, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s region %q: %w", o.Stage, o.Region, o.Err))
	}
	return errors.Join(errs...)
}
