// Package optimization runs exhaustive grid searches over strategy
// parameters, replaying one backtest per parameter combination and ranking
// the outcomes by a composite risk-adjusted score.
package optimization

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ducminhle1904/crypto-strategy-bot/internal/backtest"
	"github.com/ducminhle1904/crypto-strategy-bot/internal/logger"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/config"
	"github.com/ducminhle1904/crypto-strategy-bot/pkg/types"
)

// CombinationResult summarizes one evaluated parameter combination.
type CombinationResult struct {
	Index       int                `json:"index"`
	Parameters  map[string]float64 `json:"parameters"`
	Score       float64            `json:"score"`
	TotalReturn float64            `json:"total_return"`
	WinRate     float64            `json:"win_rate"`
	MaxDrawdown float64            `json:"max_drawdown"`
	SharpeRatio float64            `json:"sharpe_ratio"`
}

// Result holds the outcome of a grid search. AllResults is sorted by score
// descending; ties resolve to the earlier combination index, so the ranking
// is deterministic regardless of worker scheduling.
type Result struct {
	Best       *backtest.Result    `json:"best_result"`
	BestScore  float64             `json:"best_score"`
	AllResults []CombinationResult `json:"all_results"`
}

// Optimizer evaluates every combination of a candidate grid against the same
// price history. Combinations are independent, so they run on a worker pool.
type Optimizer struct {
	base           config.StrategyParameters
	initialCapital float64
	workerCount    int
	log            zerolog.Logger

	// Progress, when set, is incremented once per completed combination.
	Progress *ProgressTracker
}

// gridOutcome carries one combination's result back from a worker.
type gridOutcome struct {
	index     int
	overrides map[string]float64
	result    *backtest.Result
	err       error
}

// NewOptimizer creates a grid optimizer. Parameters not named in the
// candidate grid keep their value from base. A workerCount of zero or less
// uses one worker per CPU.
func NewOptimizer(base config.StrategyParameters, initialCapital float64, workerCount int) *Optimizer {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &Optimizer{
		base:           base,
		initialCapital: initialCapital,
		workerCount:    workerCount,
		log:            logger.For("optimization"),
	}
}

// Optimize runs one backtest per combination in the candidate grid and
// returns the ranked outcomes. Combinations that fail validation or the
// backtest itself are logged and skipped; the search only fails as a whole
// when no combination at all produces a result.
func (o *Optimizer) Optimize(ctx context.Context, symbol string, bars []types.OHLCV, candidates Candidates) (*Result, error) {
	jobs, err := enumerate(o.base, candidates)
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Str("symbol", symbol).
		Int("combinations", len(jobs)).
		Int("workers", o.workerCount).
		Msg("starting parameter optimization")

	jobQueue := make(chan gridJob)
	resultQueue := make(chan gridOutcome, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < o.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-jobQueue:
					if !ok {
						return
					}
					resultQueue <- o.evaluate(symbol, bars, job)
					if o.Progress != nil {
						o.Progress.Increment()
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

submit:
	for _, job := range jobs {
		select {
		case jobQueue <- job:
		case <-ctx.Done():
			break submit
		}
	}
	close(jobQueue)
	wg.Wait()
	close(resultQueue)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &Result{}
	byIndex := make(map[int]*backtest.Result, len(jobs))
	for outcome := range resultQueue {
		if outcome.err != nil {
			o.log.Warn().
				Err(outcome.err).
				Int("combination", outcome.index).
				Msg("skipping failed combination")
			continue
		}
		res := outcome.result
		byIndex[outcome.index] = res
		out.AllResults = append(out.AllResults, CombinationResult{
			Index:       outcome.index,
			Parameters:  outcome.overrides,
			Score:       compositeScore(res),
			TotalReturn: res.TotalReturn,
			WinRate:     res.WinRate,
			MaxDrawdown: res.MaxDrawdown,
			SharpeRatio: res.SharpeRatio,
		})
	}
	if len(out.AllResults) == 0 {
		return nil, errors.New("no parameter combination produced a result")
	}

	sort.Slice(out.AllResults, func(i, j int) bool {
		a, b := out.AllResults[i], out.AllResults[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Index < b.Index
	})
	best := out.AllResults[0]
	out.BestScore = best.Score
	out.Best = byIndex[best.Index]

	o.log.Info().
		Float64("best_score", out.BestScore).
		Int("combination", best.Index).
		Int("evaluated", len(out.AllResults)).
		Msg("parameter optimization complete")
	return out, nil
}

// evaluate runs a single combination. Invalid parameter sets are rejected
// before the backtest so one bad combination cannot sink the whole grid.
func (o *Optimizer) evaluate(symbol string, bars []types.OHLCV, job gridJob) gridOutcome {
	outcome := gridOutcome{index: job.index, overrides: job.overrides}
	if err := job.params.Validate(); err != nil {
		outcome.err = err
		return outcome
	}
	engine := backtest.NewEngine(o.initialCapital, job.params)
	res, err := engine.Run(symbol, bars)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.result = res
	return outcome
}

// compositeScore folds return quality and risk into a single ranking value:
// Sharpe ratio scaled by the win rate and discounted by the max drawdown.
func compositeScore(r *backtest.Result) float64 {
	return r.SharpeRatio * r.WinRate * (1 - r.MaxDrawdown/100)
}
