package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/dkelsey/arbscan/internal/domain"
)

// Engine runs the configured classifiers over one batch of market snapshots.
// It is stateless between runs: the same snapshots and config always produce
// the same ranked result.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// Result is the output of one detection pass.
type Result struct {
	Opportunities []domain.Opportunity
	Summary       domain.ScanSummary
	// Incomplete is set when the context was cancelled mid-run and not every
	// snapshot was examined.
	Incomplete bool
}

// New validates cfg eagerly and returns a ready engine. Config validation is
// the only way construction fails; a bad snapshot at run time is skipped and
// counted, never fatal.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "engine")),
	}, nil
}

// Run classifies every snapshot in the batch and returns deduplicated,
// ranked opportunities plus summary counters.
//
// Snapshots missing either ask are counted as skipped and excluded from all
// classifiers, including the text-only ones: a market without a full book is
// not actionable and only adds noise to the flags.
func (e *Engine) Run(ctx context.Context, snapshots []domain.MarketSnapshot) Result {
	var res Result

	complete := make([]domain.MarketSnapshot, 0, len(snapshots))
	for i := range snapshots {
		res.Summary.SnapshotsConsidered++
		if !snapshots[i].Complete() {
			res.Summary.SnapshotsSkipped++
			continue
		}
		complete = append(complete, snapshots[i])
	}

	var raw []domain.Opportunity
	for i := range complete {
		if ctx.Err() != nil {
			res.Incomplete = true
			e.logger.WarnContext(ctx, "run cancelled mid-batch",
				slog.Int("examined", i),
				slog.Int("total", len(complete)))
			break
		}
		snap := &complete[i]

		if e.cfg.enabled(domain.KindSpread) {
			if opp := Spread(snap, e.cfg.SpreadThreshold); opp != nil {
				raw = append(raw, *opp)
			}
		}
		if e.cfg.enabled(domain.KindCombinatorial) {
			opps, evaluated := Combinatorial(snap, complete,
				e.cfg.ComboMatchThreshold, e.cfg.ComboThreshold, e.cfg.maxCandidates())
			res.Summary.MatchesEvaluated += evaluated
			raw = append(raw, opps...)
		}
		if e.cfg.enabled(domain.KindNearCertain) {
			if opp := NearCertain(snap, e.cfg.CertaintyThreshold); opp != nil {
				raw = append(raw, *opp)
			}
		}
		if e.cfg.enabled(domain.KindAmbiguous) {
			if opp := Ambiguity(snap, e.cfg.AmbiguityKeywords); opp != nil {
				raw = append(raw, *opp)
			}
		}
		if e.cfg.enabled(domain.KindCrossVenue) {
			opp, evaluated := CrossVenue(snap, complete,
				e.cfg.CrossVenueMatchThreshold, e.cfg.CrossVenueThreshold, e.cfg.maxCandidates())
			res.Summary.MatchesEvaluated += evaluated
			if opp != nil {
				raw = append(raw, *opp)
			}
		}
	}

	res.Opportunities = rank(dedupe(raw))
	e.logger.Debug("run complete",
		slog.Int("considered", res.Summary.SnapshotsConsidered),
		slog.Int("skipped", res.Summary.SnapshotsSkipped),
		slog.Int("matches_evaluated", res.Summary.MatchesEvaluated),
		slog.Int("opportunities", len(res.Opportunities)))
	return res
}

// dedupe collapses opportunities derived from the same market set. Pairwise
// classifiers see each pair from both sides, so the same finding surfaces
// twice under swapped snapshot order; the identity key sorts the refs to
// catch that. On collision the higher profit wins.
func dedupe(opps []domain.Opportunity) []domain.Opportunity {
	if len(opps) < 2 {
		return opps
	}
	seen := make(map[string]int, len(opps))
	out := opps[:0]
	for _, opp := range opps {
		key := dedupeKey(&opp)
		if i, ok := seen[key]; ok {
			if opp.ProfitPercent > out[i].ProfitPercent {
				out[i] = opp
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, opp)
	}
	return out
}

func dedupeKey(opp *domain.Opportunity) string {
	refs := make([]string, len(opp.Snapshots))
	for i := range opp.Snapshots {
		refs[i] = opp.Snapshots[i].Ref()
	}
	sort.Strings(refs)
	return string(opp.Kind) + "|" + strings.Join(refs, "|")
}

// rank orders monetary opportunities by profit descending, with volume and
// then ref as deterministic tie-breaks, and places informational flags after
// all monetary results.
func rank(opps []domain.Opportunity) []domain.Opportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := &opps[i], &opps[j]
		am, bm := a.Kind.Monetary(), b.Kind.Monetary()
		if am != bm {
			return am
		}
		if !am {
			return dedupeKey(a) < dedupeKey(b)
		}
		if a.ProfitPercent != b.ProfitPercent {
			return a.ProfitPercent > b.ProfitPercent
		}
		if av, bv := a.Volume(), b.Volume(); av != bv {
			return av > bv
		}
		return dedupeKey(a) < dedupeKey(b)
	})
	return opps
}
