package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hazyhaar/lavinia/pkg/election"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS country (
	code           TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	election_types TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS district_metrics (
	id            INTEGER PRIMARY KEY,
	election_year INTEGER NOT NULL,
	district      TEXT NOT NULL,
	area          REAL NOT NULL,
	population    INTEGER NOT NULL,
	seats         INTEGER NOT NULL,
	UNIQUE (election_year, district)
);
CREATE TABLE IF NOT EXISTS election_parameters (
	id             INTEGER PRIMARY KEY,
	election_year  INTEGER NOT NULL,
	election_type  TEXT NOT NULL,
	algorithm      INTEGER NOT NULL,
	threshold      REAL NOT NULL,
	area_factor    REAL NOT NULL,
	district_seats INTEGER NOT NULL,
	leveling_seats INTEGER NOT NULL,
	total_votes    INTEGER NOT NULL,
	UNIQUE (election_year, election_type)
);
CREATE TABLE IF NOT EXISTS algorithm_parameters (
	id            INTEGER PRIMARY KEY,
	election_year INTEGER NOT NULL,
	election_type TEXT NOT NULL,
	key           TEXT NOT NULL,
	value         REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS seat_overrides (
	id            INTEGER PRIMARY KEY,
	election_year INTEGER NOT NULL,
	election_type TEXT NOT NULL,
	district      TEXT NOT NULL,
	seats         INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS party_votes (
	id            INTEGER PRIMARY KEY,
	election_year INTEGER NOT NULL,
	district      TEXT NOT NULL,
	party         TEXT NOT NULL,
	election_type TEXT NOT NULL,
	votes         INTEGER NOT NULL,
	share         REAL NOT NULL,
	UNIQUE (election_year, election_type, district, party)
);
CREATE TABLE IF NOT EXISTS parties (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
`

// SQLite persists the dataset in a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema
// exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open election db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create election schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// HasPartyVotes reports whether any vote row exists.
func (s *SQLite) HasPartyVotes(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM party_votes)`).Scan(&n); err != nil {
		return false, fmt.Errorf("count party votes: %w", err)
	}
	return n == 1, nil
}

// Commit writes ds in a single transaction. Any failure rolls back every
// row.
func (s *SQLite) Commit(ctx context.Context, ds *election.Dataset) error {
	seeded, err := s.HasPartyVotes(ctx)
	if err != nil {
		return err
	}
	if seeded {
		return ErrAlreadySeeded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	if err := insertDataset(ctx, tx, ds); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}
	return nil
}

func insertDataset(ctx context.Context, tx *sql.Tx, ds *election.Dataset) error {
	c := ds.Country
	if c.Code != "" {
		if _, err := tx.ExecContext(ctx, `INSERT INTO country (code, name, election_types) VALUES (?, ?, ?)`,
			c.Code, c.Name, joinTypes(c.ElectionTypes)); err != nil {
			return fmt.Errorf("insert country %s: %w", c.Code, err)
		}
	}

	for _, m := range ds.DistrictMetrics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO district_metrics
			(election_year, district, area, population, seats) VALUES (?, ?, ?, ?, ?)`,
			m.ElectionYear, m.District, m.Area, m.Population, m.Seats); err != nil {
			return fmt.Errorf("insert district metric %s %d: %w", m.District, m.ElectionYear, err)
		}
	}

	for _, p := range ds.ElectionParameters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO election_parameters
			(election_year, election_type, algorithm, threshold, area_factor, district_seats, leveling_seats, total_votes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ElectionYear, p.ElectionType, int(p.Algorithm.Algorithm), p.Threshold, p.AreaFactor,
			p.DistrictSeats, p.LevelingSeats, p.TotalVotes); err != nil {
			return fmt.Errorf("insert election parameters %s %d: %w", p.ElectionType, p.ElectionYear, err)
		}
		for _, param := range p.Algorithm.Parameters {
			if _, err := tx.ExecContext(ctx, `INSERT INTO algorithm_parameters
				(election_year, election_type, key, value) VALUES (?, ?, ?, ?)`,
				p.ElectionYear, p.ElectionType, param.Key, param.Value); err != nil {
				return fmt.Errorf("insert algorithm parameter %s: %w", param.Key, err)
			}
		}
		for _, o := range p.SeatOverrides {
			if _, err := tx.ExecContext(ctx, `INSERT INTO seat_overrides
				(election_year, election_type, district, seats) VALUES (?, ?, ?, ?)`,
				p.ElectionYear, p.ElectionType, o.District, o.Seats); err != nil {
				return fmt.Errorf("insert seat override %s: %w", o.District, err)
			}
		}
	}

	for _, v := range ds.PartyVotes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO party_votes
			(election_year, district, party, election_type, votes, share) VALUES (?, ?, ?, ?, ?, ?)`,
			v.ElectionYear, v.District, v.Party, v.ElectionType, v.Votes, v.Share); err != nil {
			return fmt.Errorf("insert party votes %s %s %d: %w", v.Party, v.District, v.ElectionYear, err)
		}
	}

	for _, p := range ds.Parties {
		if _, err := tx.ExecContext(ctx, `INSERT INTO parties (code, name) VALUES (?, ?)`, p.Code, p.Name); err != nil {
			return fmt.Errorf("insert party %s: %w", p.Code, err)
		}
	}
	return nil
}

// Snapshot reads the whole dataset back in insertion order.
func (s *SQLite) Snapshot(ctx context.Context) (*election.Dataset, error) {
	ds := &election.Dataset{}

	var types string
	err := s.db.QueryRowContext(ctx, `SELECT code, name, election_types FROM country LIMIT 1`).
		Scan(&ds.Country.Code, &ds.Country.Name, &types)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("read country: %w", err)
	default:
		ds.Country.ElectionTypes = splitTypes(types)
	}

	if ds.DistrictMetrics, err = s.districtMetrics(ctx); err != nil {
		return nil, err
	}
	if ds.ElectionParameters, err = s.electionParameters(ctx); err != nil {
		return nil, err
	}
	if ds.PartyVotes, err = s.partyVotes(ctx); err != nil {
		return nil, err
	}
	if ds.Parties, err = s.parties(ctx); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *SQLite) districtMetrics(ctx context.Context) ([]election.DistrictMetric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT election_year, district, area, population, seats
		FROM district_metrics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list district metrics: %w", err)
	}
	defer rows.Close()

	var out []election.DistrictMetric
	for rows.Next() {
		var m election.DistrictMetric
		if err := rows.Scan(&m.ElectionYear, &m.District, &m.Area, &m.Population, &m.Seats); err != nil {
			return nil, fmt.Errorf("scan district metric: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLite) electionParameters(ctx context.Context) ([]election.ElectionParameters, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT election_year, election_type, algorithm, threshold,
		area_factor, district_seats, leveling_seats, total_votes
		FROM election_parameters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list election parameters: %w", err)
	}
	defer rows.Close()

	var out []election.ElectionParameters
	for rows.Next() {
		var (
			p   election.ElectionParameters
			alg int
		)
		if err := rows.Scan(&p.ElectionYear, &p.ElectionType, &alg, &p.Threshold,
			&p.AreaFactor, &p.DistrictSeats, &p.LevelingSeats, &p.TotalVotes); err != nil {
			return nil, fmt.Errorf("scan election parameters: %w", err)
		}
		p.Algorithm.Algorithm = election.Algorithm(alg)
		if !p.Algorithm.Algorithm.Valid() {
			return nil, fmt.Errorf("election parameters %s %d: invalid algorithm %d", p.ElectionType, p.ElectionYear, alg)
		}
		p.Algorithm.Parameters = []election.Parameter{}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		p := &out[i]
		if err := s.loadParameterRows(ctx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLite) loadParameterRows(ctx context.Context, p *election.ElectionParameters) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM algorithm_parameters
		WHERE election_year = ? AND election_type = ? ORDER BY id`, p.ElectionYear, p.ElectionType)
	if err != nil {
		return fmt.Errorf("list algorithm parameters: %w", err)
	}
	for rows.Next() {
		var param election.Parameter
		if err := rows.Scan(&param.Key, &param.Value); err != nil {
			rows.Close()
			return fmt.Errorf("scan algorithm parameter: %w", err)
		}
		p.Algorithm.Parameters = append(p.Algorithm.Parameters, param)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, `SELECT district, seats FROM seat_overrides
		WHERE election_year = ? AND election_type = ? ORDER BY id`, p.ElectionYear, p.ElectionType)
	if err != nil {
		return fmt.Errorf("list seat overrides: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o election.DistrictSeat
		if err := rows.Scan(&o.District, &o.Seats); err != nil {
			return fmt.Errorf("scan seat override: %w", err)
		}
		p.SeatOverrides = append(p.SeatOverrides, o)
	}
	return rows.Err()
}

func (s *SQLite) partyVotes(ctx context.Context) ([]election.PartyVote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT election_year, district, party, election_type, votes, share
		FROM party_votes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list party votes: %w", err)
	}
	defer rows.Close()

	var out []election.PartyVote
	for rows.Next() {
		var v election.PartyVote
		if err := rows.Scan(&v.ElectionYear, &v.District, &v.Party, &v.ElectionType, &v.Votes, &v.Share); err != nil {
			return nil, fmt.Errorf("scan party votes: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLite) parties(ctx context.Context) ([]election.Party, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM parties ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var out []election.Party
	for rows.Next() {
		var p election.Party
		if err := rows.Scan(&p.Code, &p.Name); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func joinTypes(types []string) string { return strings.Join(types, ",") }

func splitTypes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
