package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/importer"
	"github.com/stretchr/testify/require"
)

// Both stores satisfy the seeding and snapshot contracts.
var (
	_ importer.Store       = (*Memory)(nil)
	_ importer.Store       = (*SQLite)(nil)
	_ election.Snapshotter = (*Memory)(nil)
	_ election.Snapshotter = (*SQLite)(nil)
)

func sampleDataset() *election.Dataset {
	return &election.Dataset{
		Country: election.Country{Code: "NO", Name: "Norway", ElectionTypes: []string{"PE"}},
		DistrictMetrics: []election.DistrictMetric{
			{ElectionYear: 1977, District: "Akershus", Area: 4917, Population: 369000, Seats: 10},
			{ElectionYear: 1977, District: "Aust-Agder", Area: 9157, Population: 93000, Seats: 4},
			{ElectionYear: 2017, District: "Oslo", Area: 454, Population: 673469},
		},
		ElectionParameters: []election.ElectionParameters{
			{
				ElectionYear:  1977,
				ElectionType:  "PE",
				Algorithm:     election.AlgorithmParameters{Algorithm: election.SainteLague, Parameters: []election.Parameter{}},
				AreaFactor:    -1,
				DistrictSeats: 155,
				TotalVotes:    300,
				SeatOverrides: []election.DistrictSeat{
					{District: "Akershus", Seats: 10},
					{District: "Aust-Agder", Seats: 4},
				},
			},
			{
				ElectionYear: 2017,
				ElectionType: "PE",
				Algorithm: election.AlgorithmParameters{
					Algorithm:  election.ModifiedSainteLague,
					Parameters: []election.Parameter{{Key: election.FirstDivisorKey, Value: 1.4}},
				},
				Threshold:     4,
				AreaFactor:    1.8,
				DistrictSeats: 150,
				LevelingSeats: 19,
				TotalVotes:    150,
			},
		},
		PartyVotes: []election.PartyVote{
			{ElectionYear: 1977, District: "Akershus", Party: "A", ElectionType: "PE", Votes: 200, Share: 40},
			{ElectionYear: 1977, District: "Aust-Agder", Party: "H", ElectionType: "PE", Votes: 100, Share: 30},
			{ElectionYear: 2017, District: "Oslo", Party: "H", ElectionType: "PE", Votes: 150, Share: 29.8},
		},
		Parties: []election.Party{
			{Code: "A", Name: "Arbeiderpartiet"},
			{Code: "H", Name: "Høyre"},
		},
	}
}

func tempSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "lavinia.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type backend interface {
	importer.Store
	election.Snapshotter
}

func eachStore(t *testing.T, fn func(t *testing.T, st backend)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, tempSQLite(t)) })
}

func TestStore_RoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, st backend) {
		ctx := context.Background()

		seeded, err := st.HasPartyVotes(ctx)
		require.NoError(t, err)
		require.False(t, seeded)

		want := sampleDataset()
		require.NoError(t, st.Commit(ctx, want))

		seeded, err = st.HasPartyVotes(ctx)
		require.NoError(t, err)
		require.True(t, seeded)

		got, err := st.Snapshot(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}

func TestStore_EmptySnapshot(t *testing.T) {
	eachStore(t, func(t *testing.T, st backend) {
		ds, err := st.Snapshot(context.Background())
		require.NoError(t, err)
		require.True(t, ds.Empty())
		require.Empty(t, ds.Country.Code)
	})
}

func TestStore_AlreadySeeded(t *testing.T) {
	eachStore(t, func(t *testing.T, st backend) {
		ctx := context.Background()
		require.NoError(t, st.Commit(ctx, sampleDataset()))

		err := st.Commit(ctx, sampleDataset())
		require.True(t, errors.Is(err, ErrAlreadySeeded))

		ds, err := st.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, ds.PartyVotes, 3)
	})
}

func TestMemory_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Commit(ctx, sampleDataset()))

	ds, err := m.Snapshot(ctx)
	require.NoError(t, err)
	ds.PartyVotes[0].Votes = 0
	ds.ElectionParameters[1].Algorithm.Parameters[0].Value = 0

	again, err := m.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 200, again.PartyVotes[0].Votes)
	require.Equal(t, 1.4, again.ElectionParameters[1].Algorithm.Parameters[0].Value)
}

func TestMemory_CommitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	require.ErrorIs(t, m.Commit(ctx, sampleDataset()), context.Canceled)

	seeded, err := m.HasPartyVotes(context.Background())
	require.NoError(t, err)
	require.False(t, seeded)
}

func TestSQLite_CommitIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := tempSQLite(t)

	ds := sampleDataset()
	// Duplicate vote key violates the unique constraint after the first
	// rows are written.
	ds.PartyVotes = append(ds.PartyVotes, ds.PartyVotes[0])
	require.Error(t, db.Commit(ctx, ds))

	got, err := db.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Country.Code)
	require.Empty(t, got.DistrictMetrics)
	require.Empty(t, got.ElectionParameters)
	require.Empty(t, got.PartyVotes)
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "lavinia.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Commit(ctx, sampleDataset()))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	seeded, err := db.HasPartyVotes(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
}
