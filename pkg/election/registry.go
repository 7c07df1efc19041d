package election

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// All is the filter value meaning "no filter" for parties and districts.
const All = "ALL"

// DefaultPreviousYears is the window size of the previous-N-years queries.
const DefaultPreviousYears = 3

// Snapshotter yields the committed dataset.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*Dataset, error)
}

// Registry serves read-only queries over the committed dataset.
type Registry struct {
	mu      sync.RWMutex
	src     Snapshotter
	ds      *Dataset
	parties map[string]string
}

// NewRegistry creates an empty registry reading from src.
func NewRegistry(src Snapshotter) *Registry {
	return &Registry{
		src:     src,
		ds:      &Dataset{},
		parties: map[string]string{},
	}
}

// Load replaces the served dataset with a fresh snapshot of the store.
func (r *Registry) Load(ctx context.Context) error {
	ds, err := r.src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	parties := make(map[string]string, len(ds.Parties))
	for _, p := range ds.Parties {
		parties[p.Code] = p.Name
	}

	r.mu.Lock()
	r.ds = ds
	r.parties = parties
	r.mu.Unlock()
	return nil
}

// Reload reloads the dataset from the store (hot reload).
func (r *Registry) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

// Counts is the size of the served dataset.
type Counts struct {
	Elections       int `json:"elections"`
	DistrictMetrics int `json:"district_metrics"`
	PartyVotes      int `json:"party_votes"`
	Parties         int `json:"parties"`
}

// Counts returns the number of served entities of each kind.
func (r *Registry) Counts() Counts {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Counts{
		Elections:       len(r.ds.ElectionParameters),
		DistrictMetrics: len(r.ds.DistrictMetrics),
		PartyVotes:      len(r.ds.PartyVotes),
		Parties:         len(r.ds.Parties),
	}
}

// Years returns every election year, most recent first.
func (r *Registry) Years() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	years := r.electionYears(func(int) bool { return true })
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Parties returns the party code to name mapping.
func (r *Registry) Parties() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.parties))
	for k, v := range r.parties {
		out[k] = v
	}
	return out
}

// Districts returns the distinct districts of year, or of every year when
// year is zero, in file order.
func (r *Registry) Districts(year int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	districts := []string{}
	for _, m := range r.ds.DistrictMetrics {
		if year != 0 && m.ElectionYear != year {
			continue
		}
		if _, ok := seen[m.District]; ok {
			continue
		}
		seen[m.District] = struct{}{}
		districts = append(districts, m.District)
	}
	return districts
}

// VoteFilter selects party votes. Zero Year and empty or All strings match
// everything.
type VoteFilter struct {
	Year     int
	Party    string
	District string
}

// Votes returns the party votes matching f.
func (r *Registry) Votes(f VoteFilter) []PartyVote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.votes(func(y int) bool { return f.Year == 0 || y == f.Year }, f.Party, f.District)
}

// PreviousVotes returns the party votes of the last n elections up to year.
func (r *Registry) PreviousVotes(year, n int, party, district string) []PartyVote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.votes(yearSet(r.previousYears(year, n)), party, district)
}

func (r *Registry) votes(inYear func(int) bool, party, district string) []PartyVote {
	out := []PartyVote{}
	for _, v := range r.ds.PartyVotes {
		if inYear(v.ElectionYear) && matches(party, v.Party) && matches(district, v.District) {
			out = append(out, v)
		}
	}
	return out
}

// MetricFilter selects district metrics.
type MetricFilter struct {
	Year     int
	District string
}

// Metrics returns the district metrics matching f.
func (r *Registry) Metrics(f MetricFilter) []DistrictMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics(func(y int) bool { return f.Year == 0 || y == f.Year }, f.District)
}

// PreviousMetrics returns the district metrics of the last n elections up to
// year.
func (r *Registry) PreviousMetrics(year, n int, district string) []DistrictMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics(yearSet(r.previousYears(year, n)), district)
}

func (r *Registry) metrics(inYear func(int) bool, district string) []DistrictMetric {
	out := []DistrictMetric{}
	for _, m := range r.ds.DistrictMetrics {
		if inYear(m.ElectionYear) && matches(district, m.District) {
			out = append(out, m)
		}
	}
	return out
}

// Parameters returns the election parameters of year, or all when year is
// zero.
func (r *Registry) Parameters(year int) []ElectionParameters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parameters(func(y int) bool { return year == 0 || y == year })
}

// PreviousParameters returns the election parameters of the last n
// elections up to year.
func (r *Registry) PreviousParameters(year, n int) []ElectionParameters {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parameters(yearSet(r.previousYears(year, n)))
}

func (r *Registry) parameters(inYear func(int) bool) []ElectionParameters {
	out := []ElectionParameters{}
	for _, p := range r.ds.ElectionParameters {
		if inYear(p.ElectionYear) {
			out = append(out, p)
		}
	}
	return out
}

// PreviousYears returns, in ascending order, the last n election years not
// after year. A zero year considers every election.
func (r *Registry) PreviousYears(year, n int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.previousYears(year, n)
}

func (r *Registry) previousYears(year, n int) []int {
	years := r.electionYears(func(y int) bool { return year == 0 || y <= year })
	sort.Ints(years)
	if n < 0 {
		n = 0
	}
	if len(years) > n {
		years = years[len(years)-n:]
	}
	return years
}

func (r *Registry) electionYears(keep func(int) bool) []int {
	seen := make(map[int]struct{})
	years := []int{}
	for _, p := range r.ds.ElectionParameters {
		if _, ok := seen[p.ElectionYear]; ok || !keep(p.ElectionYear) {
			continue
		}
		seen[p.ElectionYear] = struct{}{}
		years = append(years, p.ElectionYear)
	}
	return years
}

func yearSet(years []int) func(int) bool {
	set := make(map[int]struct{}, len(years))
	for _, y := range years {
		set[y] = struct{}{}
	}
	return func(y int) bool {
		_, ok := set[y]
		return ok
	}
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}
