package docsync

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FatalError aborts a run before or during its operations
type FatalError struct {
	Phase Phase
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("sync aborted in %s phase: %v", e.Phase, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// PartialError is returned when some per-file operations failed but the run
// went through all phases.
type PartialError struct {
	Phases []*PhaseReport
}

func (e *PartialError) Error() string {
	parts := make([]string, 0, len(e.Phases))
	for _, p := range e.Phases {
		parts = append(parts, fmt.Sprintf("%d of %d files failed in phase %s", len(p.Failed), len(p.Attempted), p.Phase))
	}
	return "sync partially failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes every underlying per-file error
func (e *PartialError) Unwrap() []error {
	var errs []error
	for _, p := range e.Phases {
		for _, f := range p.Failed {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// PhaseReport records what happened to each file handled by one phase
type PhaseReport struct {
	Phase     Phase
	Attempted []string
	Succeeded []string
	Skipped   []string
	Failed    []FileError
}

func newPhaseReport(phase Phase) *PhaseReport {
	return &PhaseReport{Phase: phase}
}

func (p *PhaseReport) attempt(name string) {
	p.Attempted = append(p.Attempted, name)
}

func (p *PhaseReport) succeed(name string) {
	p.Succeeded = append(p.Succeeded, name)
}

func (p *PhaseReport) skip(name string) {
	p.Skipped = append(p.Skipped, name)
}

func (p *PhaseReport) fail(name string, err error) {
	p.Failed = append(p.Failed, FileError{Name: name, Err: err})
}

func (p *PhaseReport) String() string {
	return fmt.Sprintf("%s: %d ok, %d skipped, %d failed of %d",
		p.Phase, len(p.Succeeded), len(p.Skipped), len(p.Failed), len(p.Attempted))
}

// RunReport is the outcome of a full sync run
type RunReport struct {
	Source   string
	Mirror   string
	DryRun   bool
	Diff     *DiffResult
	Delete   *PhaseReport
	Upload   *PhaseReport
	Pull     *PhaseReport
	Started  time.Time
	Finished time.Time
}

func newRunReport(source, mirror string, dryRun bool) *RunReport {
	return &RunReport{
		Source:  source,
		Mirror:  mirror,
		DryRun:  dryRun,
		Delete:  newPhaseReport(PhaseDelete),
		Upload:  newPhaseReport(PhaseUpload),
		Pull:    newPhaseReport(PhasePull),
		Started: time.Now(),
	}
}

// Phases returns the phase reports in execution order
func (r *RunReport) Phases() []*PhaseReport {
	return []*PhaseReport{r.Delete, r.Upload, r.Pull}
}

// Failures returns every failed file across all phases
func (r *RunReport) Failures() []FileError {
	var out []FileError
	for _, p := range r.Phases() {
		out = append(out, p.Failed...)
	}
	return out
}

func (r *RunReport) Summary() string {
	var sb strings.Builder
	for _, p := range r.Phases() {
		sb.WriteString(p.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Err is nil when every operation either succeeded or was skipped on purpose
func (r *RunReport) Err() error {
	var failed []*PhaseReport
	for _, p := range r.Phases() {
		if len(p.Failed) > 0 {
			failed = append(failed, p)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &PartialError{Phases: failed}
}

// IsFatal reports whether err aborted the run as a whole
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
