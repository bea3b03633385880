package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/roomly/roomly-backend/internal/data/repos"
	"github.com/roomly/roomly-backend/internal/domain"
	"github.com/roomly/roomly-backend/internal/platform/dbctx"
	"github.com/roomly/roomly-backend/internal/platform/envutil"
	"github.com/roomly/roomly-backend/internal/platform/logger"
	"github.com/roomly/roomly-backend/internal/recommend/strategy"
)

const (
	// DefaultTopK bounds the merged result set.
	DefaultTopK = 8

	defaultStrategyTimeout = 5 * time.Second
	defaultConcurrency     = 4
)

// typePriority breaks score ties deterministically: more actionable
// recommendation types sort first.
var typePriority = map[domain.RecommendationType]int{
	domain.RecommendationAlternativeRoom: 0,
	domain.RecommendationAlternativeTime: 1,
	domain.RecommendationSmartScheduling: 2,
	domain.RecommendationProactive:       3,
}

// Aggregator fans a request out to every registered strategy, contains
// their failures, and merges their output into one ranked list.
type Aggregator struct {
	log        *logger.Logger
	strategies []strategy.Generator
	rooms      repos.RoomRepo
	sem        *semaphore.Weighted
	timeout    time.Duration
	topK       int
}

func NewAggregator(log *logger.Logger, rooms repos.RoomRepo, strategies ...strategy.Generator) *Aggregator {
	return &Aggregator{
		log:        log.With("service", "RecommendationAggregator"),
		strategies: strategies,
		rooms:      rooms,
		sem:        semaphore.NewWeighted(int64(envutil.Int("STRATEGY_CONCURRENCY", defaultConcurrency))),
		timeout:    envutil.Seconds("STRATEGY_TIMEOUT_SECONDS", defaultStrategyTimeout),
		topK:       envutil.Int("RECOMMENDATION_TOP_K", DefaultTopK),
	}
}

// Recommend runs all strategies and returns at most topK recommendations.
// A strategy that errors or times out contributes nothing; if every
// strategy comes back empty the result is synthesized from the request
// itself so callers always have something to show.
func (a *Aggregator) Recommend(ctx context.Context, req domain.RecommendationRequest) ([]domain.Recommendation, error) {
	perStrategy := make([][]domain.Recommendation, len(a.strategies))

	var wg sync.WaitGroup
	for i, gen := range a.strategies {
		wg.Add(1)
		go func(i int, gen strategy.Generator) {
			defer wg.Done()
			if err := a.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer a.sem.Release(1)

			runCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			recs, err := gen.Generate(runCtx, req)
			if err != nil {
				a.log.Warn("strategy failed", "strategy", gen.Name(), "error", err)
				return
			}
			perStrategy[i] = recs
		}(i, gen)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		// The caller is gone; partial results are discarded.
		return nil, err
	}

	// Merge in registration order so equal inputs give equal output.
	var merged []domain.Recommendation
	for _, recs := range perStrategy {
		merged = append(merged, recs...)
	}

	merged = dedup(merged)
	rank(merged)
	if len(merged) > a.topK {
		merged = merged[:a.topK]
	}
	if len(merged) == 0 {
		merged = a.fallback(ctx, req)
	}
	return merged, nil
}

// dedup drops later recommendations that propose the same room and time
// window as an earlier one. First occurrence wins, order is preserved.
func dedup(recs []domain.Recommendation) []domain.Recommendation {
	type slotKey struct {
		roomID string
		start  int64
		end    int64
	}
	seen := make(map[slotKey]struct{}, len(recs))
	out := recs[:0]
	for _, r := range recs {
		k := slotKey{
			roomID: r.Suggestion.RoomID.String(),
			start:  r.Suggestion.StartTime.UTC().Truncate(time.Minute).Unix(),
			end:    r.Suggestion.EndTime.UTC().Truncate(time.Minute).Unix(),
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func rank(recs []domain.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return priorityOf(recs[i].Type) < priorityOf(recs[j].Type)
	})
}

func priorityOf(t domain.RecommendationType) int {
	if p, ok := typePriority[t]; ok {
		return p
	}
	return len(typePriority)
}

// fallback fabricates suggestions straight from the request: the asked-for
// slot plus the slot one hour later. Scores are intentionally modest so
// real strategy output always outranks them on a retry.
func (a *Aggregator) fallback(ctx context.Context, req domain.RecommendationRequest) []domain.Recommendation {
	name := "requested room"
	capacity := req.Attendees
	if a.rooms != nil {
		if room, err := a.rooms.GetByID(dbctx.Context{Ctx: ctx}, req.RoomID); err == nil && room != nil {
			name = room.Name
			capacity = room.Capacity
		}
	}

	window := req.EndTime().Sub(req.StartTime)
	mk := func(start time.Time, score float64, reason string) domain.Recommendation {
		return domain.Recommendation{
			Type:   domain.RecommendationAlternativeTime,
			Score:  score,
			Reason: reason,
			Suggestion: domain.Suggestion{
				RoomID:     req.RoomID,
				RoomName:   name,
				StartTime:  start,
				EndTime:    start.Add(window),
				Capacity:   capacity,
				Confidence: 0.2,
			},
			DataSource: "fallback",
		}
	}
	return []domain.Recommendation{
		mk(req.StartTime, 0.3, "try the requested slot again shortly"),
		mk(req.StartTime.Add(time.Hour), 0.25, "try one hour later"),
	}
}
