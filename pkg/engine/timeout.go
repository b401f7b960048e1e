package engine

import (
	"fmt"
	"time"

	"girder/pkg/assembly"
)

// DefaultEvalTimeout is the hard limit for a single evaluation when no
// custom timeout is configured.
const DefaultEvalTimeout = 5 * time.Second

// evalResult is the internal type used to pass evaluation results
// through channels.
type evalResult struct {
	store  *assembly.Store
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, but returns a timeout
// error if the evaluation exceeds the engine timeout. It uses the
// generation counter to discard stale results from previous
// evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func (e *Engine) waitWithTimeout(ch <-chan evalResult, gen uint64) (*assembly.Store, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			// A newer evaluation was started; discard this result.
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}

		return res.store, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", e.timeout)
	}
}
