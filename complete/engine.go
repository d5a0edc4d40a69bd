package complete

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/crillab/vipr/cerrors"
	"github.com/crillab/vipr/cert"
)

// Options configures one completion run.
type Options struct {
	// Threads bounds the number of concurrent completions; 0 means one
	// per CPU.
	Threads int
	// NewOracle builds one LP oracle per warm-start context; nil means
	// the in-process SimplexOracle.
	NewOracle func() Oracle
	// Logger receives per-derivation progress and oracle warnings; nil
	// silences everything below warning level.
	Logger *logrus.Logger
}

// Stats summarizes a completion run.
type Stats struct {
	// Completed counts derivations whose multipliers were filled in.
	Completed int
	// Warnings counts derivations left incomplete after a non-terminal
	// oracle status.
	Warnings int
	// Total counts derivations that needed completion.
	Total int
}

// Engine fills in the weak and incomplete derivations of one parsed
// certificate. The derivations are mutated in place, so the writer emits
// them in input order without any reordering bookkeeping.
type Engine struct {
	model *cert.Model
	opts  Options
	log   *logrus.Entry

	// cons is the full shared constraint list: CON entries followed by
	// every derivation's declared constraint. It is immutable during the
	// parallel phase; workers read it without locking.
	cons []*cert.Constraint
}

// NewEngine prepares an engine for m.
func NewEngine(m *cert.Model, opts Options) *Engine {
	if opts.Threads <= 0 {
		opts.Threads = runtime.NumCPU()
	}
	if opts.NewOracle == nil {
		opts.NewOracle = func() Oracle { return NewSimplexOracle() }
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	e := &Engine{
		model: m,
		opts:  opts,
		log:   logger.WithField("run_id", uuid.NewString()),
	}
	e.cons = make([]*cert.Constraint, 0, len(m.Constraints)+len(m.Derivations))
	e.cons = append(e.cons, m.Constraints...)
	for _, der := range m.Derivations {
		e.cons = append(e.cons, der.Declared)
	}
	return e
}

// needsCompletion reports whether der is a weak or incomplete lin.
func needsCompletion(der *cert.Derivation) bool {
	return der.Reason.Kind == cert.ReasonLin && der.Reason.Lin != nil &&
		(der.Reason.Lin.Incomplete || der.Reason.Lin.Weak)
}

// Run completes every flagged derivation. OracleErrors are tolerated
// per-derivation (the derivation stays incomplete and is counted in
// Stats.Warnings); any other error cancels the run and is returned.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	// Derived bound rows extend the global bound table the parser built
	// from CON, before any worker starts reading it.
	for i, der := range e.model.Derivations {
		e.model.Bounds.Observe(der.Declared, len(e.model.Constraints)+i)
	}

	var jobs []*cert.Derivation
	needLP := false
	for _, der := range e.model.Derivations {
		if needsCompletion(der) {
			jobs = append(jobs, der)
			if der.Reason.Lin.Incomplete {
				needLP = true
			}
		}
	}
	stats := &Stats{Total: len(jobs)}
	if len(jobs) == 0 {
		return stats, nil
	}

	// Ring buffer of warm-start contexts, twice the worker count so a
	// worker never waits on a context that another worker is about to
	// return.
	var pool chan *lpContext
	if needLP {
		pool = make(chan *lpContext, 2*e.opts.Threads)
		for i := 0; i < cap(pool); i++ {
			pool <- newLPContext(e.opts.NewOracle(), e.model)
		}
	}

	var (
		grp, gctx = errgroup.WithContext(ctx)
		sem       = semaphore.NewWeighted(int64(e.opts.Threads))
		warnings  = make(chan struct{}, len(jobs))
	)
	for _, der := range jobs {
		der := der
		if err := sem.Acquire(gctx, 1); err != nil {
			break // a worker already failed; collect its error below
		}
		var lpCtx *lpContext
		if der.Reason.Lin.Incomplete {
			select {
			case lpCtx = <-pool:
			case <-gctx.Done():
				sem.Release(1)
			}
			if lpCtx == nil {
				break
			}
		}
		grp.Go(func() error {
			defer sem.Release(1)
			err := e.completeOne(lpCtx, der)
			if lpCtx != nil {
				pool <- lpCtx
			}
			if err != nil {
				if cerrors.IsKind(err, cerrors.OracleError) {
					e.log.WithField("label", der.Declared.Label).Warn(err)
					warnings <- struct{}{}
					return nil
				}
				return err
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	close(warnings)
	for range warnings {
		stats.Warnings++
	}
	stats.Completed = stats.Total - stats.Warnings
	return stats, nil
}

// completeOne dispatches a single derivation to the weak or incomplete
// path.
func (e *Engine) completeOne(lpCtx *lpContext, der *cert.Derivation) error {
	label := der.Declared.Label
	if der.Reason.Lin.Weak {
		e.log.WithField("label", label).Debug("weak completion")
		return completeWeak(der, e.cons, e.model.Bounds)
	}
	e.log.WithField("label", label).Debug("incomplete completion")
	return completeIncomplete(lpCtx, der, e.cons)
}
