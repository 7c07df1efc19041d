// Package store persists a seeded election dataset.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/hazyhaar/lavinia/pkg/election"
)

// ErrAlreadySeeded is returned when committing to a store that holds votes.
var ErrAlreadySeeded = errors.New("store already seeded")

// Memory keeps the dataset for the lifetime of the process.
type Memory struct {
	mu sync.RWMutex
	ds *election.Dataset
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// HasPartyVotes reports whether a dataset with votes has been committed.
func (m *Memory) HasPartyVotes(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.ds.Empty(), nil
}

// Commit stores a copy of ds. It replaces nothing: a seeded store rejects
// further commits.
func (m *Memory) Commit(ctx context.Context, ds *election.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ds.Empty() {
		return ErrAlreadySeeded
	}
	m.ds = cloneDataset(ds)
	return nil
}

// Snapshot returns a copy of the stored dataset. An unseeded store yields an
// empty dataset.
func (m *Memory) Snapshot(context.Context) (*election.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ds == nil {
		return &election.Dataset{}, nil
	}
	return cloneDataset(m.ds), nil
}

func cloneDataset(ds *election.Dataset) *election.Dataset {
	out := &election.Dataset{
		Country:            ds.Country,
		DistrictMetrics:    append([]election.DistrictMetric(nil), ds.DistrictMetrics...),
		ElectionParameters: make([]election.ElectionParameters, len(ds.ElectionParameters)),
		PartyVotes:         append([]election.PartyVote(nil), ds.PartyVotes...),
		Parties:            append([]election.Party(nil), ds.Parties...),
	}
	out.Country.ElectionTypes = append([]string(nil), ds.Country.ElectionTypes...)
	for i, p := range ds.ElectionParameters {
		p.Algorithm.Parameters = append([]election.Parameter{}, p.Algorithm.Parameters...)
		p.SeatOverrides = append([]election.DistrictSeat(nil), p.SeatOverrides...)
		out.ElectionParameters[i] = p
	}
	return out
}
