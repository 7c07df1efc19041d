package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/lavinia/pkg/election"
)

// Store is the persistence the initializer seeds.
type Store interface {
	HasPartyVotes(ctx context.Context) (bool, error)
	Commit(ctx context.Context, ds *election.Dataset) error
}

// State is a step of a seeding run.
type State uint8

const (
	NotStarted State = iota
	Checked
	Loading
	Validating
	Committing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Checked:
		return "checked"
	case Loading:
		return "loading"
	case Validating:
		return "validating"
	case Committing:
		return "committing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Initializer seeds a store from one country's election files. It runs
// once; later calls return the outcome of the first run.
type Initializer struct {
	store   Store
	adapter Adapter
	root    string
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	err     error
	skipped bool
	dataset *election.Dataset
}

// NewInitializer returns an initializer seeding st with the files a lays out
// below root.
func NewInitializer(st Store, a Adapter, root string, logger *slog.Logger) *Initializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{store: st, adapter: a, root: root, logger: logger}
}

// State returns the current state.
func (in *Initializer) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Err returns the failure of the last run, if any.
func (in *Initializer) Err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.err
}

// Skipped reports whether the last run found the store already seeded.
func (in *Initializer) Skipped() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.skipped
}

// Dataset returns the dataset committed by the last run, or nil.
func (in *Initializer) Dataset() *election.Dataset {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.dataset
}

func (in *Initializer) enter(s State) {
	in.mu.Lock()
	in.state = s
	in.mu.Unlock()
}

// Run executes the seeding pipeline. A store that already holds votes is
// left untouched. Any failure aborts the run before the commit.
func (in *Initializer) Run(ctx context.Context) error {
	in.mu.Lock()
	if in.state == Done || in.state == Failed {
		err := in.err
		in.mu.Unlock()
		return err
	}
	in.mu.Unlock()

	ds, skipped, err := in.run(ctx)

	in.mu.Lock()
	defer in.mu.Unlock()
	in.err = err
	in.skipped = skipped
	if err != nil {
		in.state = Failed
		return err
	}
	in.dataset = ds
	in.state = Done
	return nil
}

func (in *Initializer) run(ctx context.Context) (*election.Dataset, bool, error) {
	seeded, err := in.store.HasPartyVotes(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("check store: %w", err)
	}
	in.enter(Checked)
	if seeded {
		return nil, true, nil
	}

	in.enter(Loading)
	layout, err := in.adapter.Layout(in.root)
	if err != nil {
		return nil, false, err
	}
	ds, err := buildDataset(ctx, layout, in.enter)
	if err != nil {
		return nil, false, err
	}

	in.enter(Committing)
	if err := in.store.Commit(ctx, ds); err != nil {
		return nil, false, fmt.Errorf("commit dataset: %w", err)
	}
	return ds, false, nil
}

// Seed runs the initializer and logs the outcome. A failed seed leaves the
// store empty; callers keep serving.
func (in *Initializer) Seed(ctx context.Context) error {
	err := in.Run(ctx)
	if err != nil {
		attrs := []any{"adapter", in.adapter.ID(), "root", in.root, "error", err}
		var e *Error
		if errors.As(err, &e) {
			attrs = append(attrs, "kind", e.Kind.String(), "path", e.Path, "line", e.Line)
		}
		in.logger.Error("seeding aborted, serving an empty dataset", attrs...)
		return err
	}
	if in.Skipped() {
		in.logger.Info("store already seeded", "adapter", in.adapter.ID())
		return nil
	}
	ds := in.Dataset()
	in.logger.Info("store seeded",
		"adapter", in.adapter.ID(),
		"district_metrics", len(ds.DistrictMetrics),
		"elections", len(ds.ElectionParameters),
		"party_votes", len(ds.PartyVotes),
		"parties", len(ds.Parties),
	)
	return nil
}

// BuildDataset loads and validates every source of layout without touching
// a store.
func BuildDataset(ctx context.Context, layout *Layout) (*election.Dataset, error) {
	return buildDataset(ctx, layout, func(State) {})
}

func buildDataset(ctx context.Context, layout *Layout, enter func(State)) (*election.Dataset, error) {
	opts := layout.Options

	metricRecords, err := loadSource(layout.Metrics, DecodeDistrictMetric, opts)
	if err != nil {
		return nil, err
	}
	metrics, err := BuildDistrictMetrics(metricRecords)
	if err != nil {
		return nil, withPath(err, layout.Metrics.Path)
	}

	ds := &election.Dataset{Country: layout.Country, DistrictMetrics: metrics}
	allResults := make(map[int][]ResultRecord)

	for _, series := range layout.Series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		byYear := make(map[int][]ResultRecord, len(series.Results))
		var votes []election.PartyVote
		for _, rs := range series.Results {
			records, err := loadSource(rs.Source, DecodeResult, opts)
			if err != nil {
				return nil, err
			}
			byYear[rs.Year] = records
			allResults[rs.Year] = append(allResults[rs.Year], records...)
			votes = append(votes, BuildPartyVotes(records, series.Type, rs.Year)...)
		}

		electionRecords, err := loadSource(series.Parameters, DecodeElection, opts)
		if err != nil {
			return nil, err
		}
		for _, r := range electionRecords {
			if _, ok := byYear[r.Year]; !ok {
				return nil, &Error{Kind: MissingDirectory, Path: series.Parameters.Path,
					Msg: fmt.Sprintf("no result file for %s %d", series.Type, r.Year)}
			}
		}

		totals := SumTotalVotes(votes)
		params, err := BuildElectionParameters(electionRecords, series.Type, totals, metrics)
		if err != nil {
			return nil, withPath(err, series.Parameters.Path)
		}

		ds.PartyVotes = append(ds.PartyVotes, votes...)
		ds.ElectionParameters = append(ds.ElectionParameters, params...)
	}

	enter(Validating)
	if ds.Empty() {
		return nil, &Error{Kind: MissingCrossReference, Msg: fmt.Sprintf("no party votes for %s", layout.Country.Code)}
	}
	if ds.Parties, err = DeriveParties(allResults); err != nil {
		return nil, err
	}
	if err := CheckCrossReferences(ds.PartyVotes, ds.ElectionParameters); err != nil {
		return nil, err
	}
	return ds, nil
}

func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
