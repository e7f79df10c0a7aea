package engine

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"claimline/internal/collect"
	"claimline/internal/config"
	"claimline/internal/content"
	"claimline/internal/domain"
	"claimline/internal/events"
	"claimline/internal/export"
	"claimline/internal/render"
	"claimline/internal/validation"
)

// State is the assembly pipeline phase. Transitions are strictly
// forward; failed is terminal for the run.
type State string

const (
	StateIdle                    State = "idle"
	StateValidating              State = "validating"
	StateGeneratingCoverLetter   State = "generating_cover_letter"
	StateCollectingDocumentation State = "collecting_documentation"
	StateGeneratingForms         State = "generating_forms"
	StateGeneratingAttestations  State = "generating_attestations"
	StateAssembling              State = "assembling"
	StateDone                    State = "done"
	StateFailed                  State = "failed"
)

// Progress is a snapshot of the pipeline position. Fraction runs
// 0.0 to 1.0 over the fixed step sequence.
type Progress struct {
	State    State   `json:"state"`
	Fraction float64 `json:"fraction"`
	Step     string  `json:"step"`
}

// stage fractions, fixed per step
const (
	fractionIdle         = 0.0
	fractionValidating   = 0.1
	fractionCoverLetter  = 0.2
	fractionCollecting   = 0.4
	fractionForms        = 0.6
	fractionAttestations = 0.7
	fractionAssembling   = 0.9
	fractionDone         = 1.0
)

// Engine runs the seven-step assembly pipeline: validate, cover
// letter, collect, forms, attestations, assemble, done. One run at a
// time per instance.
type Engine struct {
	Validator *validation.Engine
	Collector *collect.Collector
	Content   *content.Generator
	Exporter  *export.Exporter
	Events    events.Writer
	ActorID   string

	// OnProgress, when set, receives every state transition. Called
	// synchronously from Assemble's goroutine.
	OnProgress func(Progress)

	Now func() time.Time

	mu       sync.Mutex
	inFlight bool
	progress Progress
	lastErr  error
}

// New wires the pipeline from workspace config. db may be nil; the
// event log is then skipped.
func New(db *sql.DB, cfg *config.Config) *Engine {
	collector := collect.New()
	renderer := render.Text{}
	generator := content.New(&export.Tabular{})
	exporter := export.New(collector, renderer)
	if cfg.Package.NamePrefix != "" {
		exporter.NamePrefix = cfg.Package.NamePrefix
	}
	return &Engine{
		Validator: validation.New(cfg),
		Collector: collector,
		Content:   generator,
		Exporter:  exporter,
		Events:    events.Writer{DB: db},
		Now:       time.Now,
		progress:  Progress{State: StateIdle, Fraction: fractionIdle, Step: "Idle"},
	}
}

// Progress returns the latest snapshot.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progress
}

// LastError returns the error recorded by the most recent failed run.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) setProgress(state State, fraction float64, step string) {
	e.mu.Lock()
	p := Progress{State: state, Fraction: fraction, Step: step}
	e.progress = p
	cb := e.OnProgress
	e.mu.Unlock()
	if cb != nil {
		cb(p)
	}
}

func (e *Engine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return ErrAssemblyInProgress
	}
	e.inFlight = true
	e.lastErr = nil
	return nil
}

func (e *Engine) finish(err error) {
	e.mu.Lock()
	e.inFlight = false
	e.lastErr = err
	e.mu.Unlock()
}

// Assemble runs the full pipeline and returns the finished package.
// The item list must be non-empty; validation warnings are carried on
// the package rather than stopping the run. On any stage error the
// run ends in the failed state and no partial package is returned.
func (e *Engine) Assemble(ctx context.Context, scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) (domain.ClaimPackage, error) {
	if len(items) == 0 {
		return domain.ClaimPackage{}, ErrNoItemsSelected
	}
	if err := e.begin(); err != nil {
		return domain.ClaimPackage{}, err
	}

	pkg, err := e.run(ctx, scenario, items, opts)
	if err != nil {
		e.setProgress(StateFailed, e.Progress().Fraction, "Failed")
		e.finish(err)
		return domain.ClaimPackage{}, err
	}
	e.setProgress(StateDone, fractionDone, "Complete")
	e.finish(nil)
	return pkg, nil
}

func (e *Engine) run(ctx context.Context, scenario domain.ClaimScenario, items []domain.Item, opts domain.PackageOptions) (domain.ClaimPackage, error) {
	e.setProgress(StateValidating, fractionValidating, "Validating items")
	validationResult := e.Validator.ValidatePackage(items, scenario)
	e.appendEvent(ctx, "claim.validated", "", events.EventPayload{
		"is_valid":    validationResult.IsValid,
		"total_items": validationResult.TotalItems,
		"total_value": validationResult.TotalValue,
	})
	if err := ctx.Err(); err != nil {
		return domain.ClaimPackage{}, err
	}

	e.setProgress(StateGeneratingCoverLetter, fractionCoverLetter, "Generating cover letter")
	coverLetter := e.Content.CoverLetter(scenario, items, opts)
	if err := ctx.Err(); err != nil {
		return domain.ClaimPackage{}, err
	}

	e.setProgress(StateCollectingDocumentation, fractionCollecting, "Collecting documentation")
	documentation := e.Collector.Collect(items, opts)
	if err := ctx.Err(); err != nil {
		return domain.ClaimPackage{}, err
	}

	e.setProgress(StateGeneratingForms, fractionForms, "Generating forms")
	forms, err := e.Content.RequiredForms(scenario, items, opts)
	if err != nil {
		return domain.ClaimPackage{}, fmt.Errorf("generate forms: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.ClaimPackage{}, err
	}

	e.setProgress(StateGeneratingAttestations, fractionAttestations, "Generating attestations")
	var attestations []domain.Attestation
	if opts.GenerateAttestation {
		attestations = e.Content.Attestations(scenario, items, opts)
	}
	if err := ctx.Err(); err != nil {
		return domain.ClaimPackage{}, err
	}

	e.setProgress(StateAssembling, fractionAssembling, "Assembling package")
	pkg, err := e.Exporter.Assemble(scenario, items, coverLetter, documentation, forms, attestations, validationResult, opts)
	if err != nil {
		return domain.ClaimPackage{}, err
	}
	e.appendEvent(ctx, "package.assembled", pkg.ID, events.EventPayload{
		"package_dir": pkg.PackageDir,
		"items":       len(pkg.Items),
		"forms":       len(pkg.Forms),
	})
	return pkg, nil
}

func (e *Engine) appendEvent(ctx context.Context, evtType, entityID string, payload events.EventPayload) {
	// the event log never fails a run
	_ = e.Events.Append(ctx, evtType, "claim", entityID, e.ActorID, payload)
}
