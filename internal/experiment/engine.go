package experiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/brightline/growth-engine/internal/pkg/logger"
	"github.com/brightline/growth-engine/internal/store"
)

// Engine assigns visitors to variants and accumulates outcome counters.
// All state lives in the injected store; the engine itself is stateless and
// re-reads the latest persisted state before every computation.
type Engine struct {
	kv  store.KV
	now func() time.Time
}

// NewEngine creates an engine over the given store.
func NewEngine(kv store.KV) *Engine {
	return &Engine{kv: kv, now: time.Now}
}

func experimentKey(id string) string { return "ab:experiment:" + id }

func assignmentKey(visitorID, experimentID string) string {
	return "ab:assignment:" + visitorID + ":" + experimentID
}

// Register persists an experiment definition. Re-registering an existing
// id updates the definition but preserves accumulated metrics for variants
// that survive the update.
func (e *Engine) Register(ctx context.Context, exp *Experiment) error {
	if exp.ID == "" {
		return fmt.Errorf("experiment: missing id")
	}

	var stored Experiment
	err := store.GetJSON(ctx, e.kv, experimentKey(exp.ID), &stored)
	if err == nil {
		for i := range exp.Variants {
			if prev := stored.Variant(exp.Variants[i].ID); prev != nil {
				exp.Variants[i].Metrics = prev.Metrics
			}
		}
	} else if err != store.ErrNotFound {
		return err
	}

	return store.SetJSON(ctx, e.kv, experimentKey(exp.ID), exp)
}

// Get returns the persisted experiment, or store.ErrNotFound.
func (e *Engine) Get(ctx context.Context, experimentID string) (*Experiment, error) {
	var exp Experiment
	if err := store.GetJSON(ctx, e.kv, experimentKey(experimentID), &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Assign returns the visitor's variant for the experiment, bucketing on
// first evaluation and honoring the sticky assignment thereafter.
// Impressions are incremented on every call: repeat exposures count toward
// statistical power. Assign never panics; unknown or inactive experiments
// return nil, and degenerate weight configurations fall back to control.
func (e *Engine) Assign(ctx context.Context, visitorID, experimentID string) *Variant {
	exp, err := e.Get(ctx, experimentID)
	if err != nil {
		if err != store.ErrNotFound {
			logger.Warn("assign: loading experiment", "experiment", experimentID, "error", err.Error())
		}
		return nil
	}
	if !exp.Active || len(exp.Variants) == 0 {
		return nil
	}

	var assigned *Variant

	var prior Assignment
	err = store.GetJSON(ctx, e.kv, assignmentKey(visitorID, experimentID), &prior)
	if err == nil {
		// Validate the sticky variant still exists; a removed variant
		// forces a fresh bucket.
		assigned = exp.Variant(prior.VariantID)
	} else if err != store.ErrNotFound {
		logger.Warn("assign: loading assignment", "experiment", experimentID, "error", err.Error())
	}

	if assigned == nil {
		assigned = e.bucket(visitorID, exp)
		if assigned == nil {
			return nil
		}
		record := Assignment{
			ExperimentID: experimentID,
			VariantID:    assigned.ID,
			AssignedAt:   e.now().UTC(),
		}
		if err := store.SetJSON(ctx, e.kv, assignmentKey(visitorID, experimentID), record); err != nil {
			logger.Warn("assign: persisting assignment", "experiment", experimentID, "error", err.Error())
		}
	}

	assigned.Metrics.Impressions++
	if err := store.SetJSON(ctx, e.kv, experimentKey(experimentID), exp); err != nil {
		logger.Warn("assign: persisting impressions", "experiment", experimentID, "error", err.Error())
	}

	return assigned
}

// bucket deterministically maps the visitor onto the experiment's weighted
// variants: hash the visitor/experiment pair, reduce modulo total weight,
// and walk variants in declaration order accumulating weight. The same
// visitor always lands in the same variant while the variant list is
// unchanged, and the long-run population share of each variant converges
// to its declared weight.
func (e *Engine) bucket(visitorID string, exp *Experiment) *Variant {
	total := exp.totalWeight()
	if total <= 0 {
		return exp.Control()
	}

	h := fnv.New32a()
	h.Write([]byte(visitorID + "_" + exp.ID))
	slot := int(h.Sum32() % uint32(total))

	cumulative := 0
	for i := range exp.Variants {
		if exp.Variants[i].Weight <= 0 {
			continue
		}
		cumulative += exp.Variants[i].Weight
		if slot < cumulative {
			return &exp.Variants[i]
		}
	}
	return exp.Control()
}

// RecordConversion adds a conversion against the visitor's assigned
// variant. Calls for experiments the visitor was never assigned to are
// silent no-ops: you cannot convert on a test you were never exposed to.
func (e *Engine) RecordConversion(ctx context.Context, visitorID, experimentID string, value int64) {
	e.mutate(ctx, visitorID, experimentID, func(m *Metrics) {
		m.Conversions += value
	})
}

// RecordClick adds a click against the visitor's assigned variant.
func (e *Engine) RecordClick(ctx context.Context, visitorID, experimentID string) {
	e.mutate(ctx, visitorID, experimentID, func(m *Metrics) {
		m.Clicks++
	})
}

// RecordEngagementTime adds engagement seconds against the visitor's
// assigned variant.
func (e *Engine) RecordEngagementTime(ctx context.Context, visitorID, experimentID string, seconds float64) {
	if seconds <= 0 {
		return
	}
	e.mutate(ctx, visitorID, experimentID, func(m *Metrics) {
		m.EngagementSeconds += seconds
	})
}

func (e *Engine) mutate(ctx context.Context, visitorID, experimentID string, apply func(*Metrics)) {
	var prior Assignment
	if err := store.GetJSON(ctx, e.kv, assignmentKey(visitorID, experimentID), &prior); err != nil {
		return
	}

	exp, err := e.Get(ctx, experimentID)
	if err != nil {
		return
	}
	variant := exp.Variant(prior.VariantID)
	if variant == nil {
		return
	}

	apply(&variant.Metrics)
	if err := store.SetJSON(ctx, e.kv, experimentKey(experimentID), exp); err != nil {
		logger.Warn("tracker: persisting metrics", "experiment", experimentID, "error", err.Error())
	}
}

// Results evaluates the experiment's current counters. Always a fresh
// projection over persisted state, never cached.
func (e *Engine) Results(ctx context.Context, experimentID string) (Result, error) {
	exp, err := e.Get(ctx, experimentID)
	if err != nil {
		return Result{RecommendedAction: ActionContinue}, err
	}
	return CalculateResults(exp), nil
}
