package importer

import (
	"fmt"
	"sort"

	"github.com/hazyhaar/lavinia/pkg/election"
)

// BuildDistrictMetrics maps metric records to entities. Each (year, district)
// pair may appear only once.
func BuildDistrictMetrics(records []DistrictMetricRecord) ([]election.DistrictMetric, error) {
	type key struct {
		year     int
		district string
	}
	seen := make(map[key]struct{}, len(records))
	metrics := make([]election.DistrictMetric, 0, len(records))
	for _, r := range records {
		k := key{r.Year, r.District}
		if _, dup := seen[k]; dup {
			return nil, &Error{Kind: MalformedRecord, Msg: fmt.Sprintf("duplicate district metric for %s in %d", r.District, r.Year)}
		}
		seen[k] = struct{}{}
		metrics = append(metrics, election.DistrictMetric{
			ElectionYear: r.Year,
			District:     r.District,
			Area:         r.Area,
			Population:   r.Population,
			Seats:        r.Seats,
		})
	}
	return metrics, nil
}

// BuildAlgorithmParameters returns the algorithm of rec with its parameters.
// Only ModifiedSainteLague carries the first divisor.
func BuildAlgorithmParameters(rec ElectionRecord) election.AlgorithmParameters {
	params := election.AlgorithmParameters{Algorithm: rec.Algorithm, Parameters: []election.Parameter{}}
	if rec.Algorithm == election.ModifiedSainteLague {
		params.Parameters = append(params.Parameters, election.Parameter{Key: election.FirstDivisorKey, Value: rec.FirstDivisor})
	}
	return params
}

// BuildElectionParameters maps election records to entities. TotalVotes is
// taken from totals, never from the record. When the area factor is negative
// the predetermined seats of that year's districts are attached from metrics.
func BuildElectionParameters(records []ElectionRecord, electionType string, totals map[int]int, metrics []election.DistrictMetric) ([]election.ElectionParameters, error) {
	seen := make(map[int]struct{}, len(records))
	params := make([]election.ElectionParameters, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.Year]; dup {
			return nil, &Error{Kind: MalformedRecord, Msg: fmt.Sprintf("duplicate election parameters for %s %d", electionType, r.Year)}
		}
		seen[r.Year] = struct{}{}

		total, ok := totals[r.Year]
		if !ok {
			return nil, &Error{Kind: MissingCrossReference, Msg: fmt.Sprintf("no results for %s %d", electionType, r.Year)}
		}
		p := election.ElectionParameters{
			ElectionYear:  r.Year,
			ElectionType:  electionType,
			Algorithm:     BuildAlgorithmParameters(r),
			Threshold:     r.Threshold,
			AreaFactor:    r.AreaFactor,
			DistrictSeats: r.Seats,
			LevelingSeats: r.LevelingSeats,
			TotalVotes:    total,
		}
		if p.PredeterminedSeats() {
			p.SeatOverrides = seatOverrides(r.Year, metrics)
		}
		params = append(params, p)
	}
	return params, nil
}

func seatOverrides(year int, metrics []election.DistrictMetric) []election.DistrictSeat {
	var seats []election.DistrictSeat
	for _, m := range metrics {
		if m.ElectionYear == year {
			seats = append(seats, election.DistrictSeat{District: m.District, Seats: m.Seats})
		}
	}
	return seats
}

// BuildPartyVotes maps the result records of one election to vote entities.
func BuildPartyVotes(records []ResultRecord, electionType string, year int) []election.PartyVote {
	votes := make([]election.PartyVote, 0, len(records))
	for _, r := range records {
		votes = append(votes, election.PartyVote{
			ElectionYear: year,
			District:     r.District,
			Party:        r.PartyCode,
			ElectionType: electionType,
			Votes:        r.TotalVotes,
			Share:        r.Share,
		})
	}
	return votes
}

// DeriveParties folds the party code to name pairs of every year into one
// registry. A code seen with two different names is a
// ConflictingPartyMapping. The result is sorted by code.
func DeriveParties(byYear map[int][]ResultRecord) ([]election.Party, error) {
	names := make(map[string]string)
	for _, year := range sortedYears(byYear) {
		for _, r := range byYear[year] {
			existing, ok := names[r.PartyCode]
			if !ok {
				names[r.PartyCode] = r.PartyName
				continue
			}
			if existing != r.PartyName {
				return nil, &Error{
					Kind: ConflictingPartyMapping,
					Msg: fmt.Sprintf("party code %s maps to both %q and %q (%d)",
						r.PartyCode, existing, r.PartyName, year),
				}
			}
		}
	}

	parties := make([]election.Party, 0, len(names))
	for code, name := range names {
		parties = append(parties, election.Party{Code: code, Name: name})
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].Code < parties[j].Code })
	return parties, nil
}

// SumTotalVotes adds up the votes of every election year.
func SumTotalVotes(votes []election.PartyVote) map[int]int {
	totals := make(map[int]int)
	for _, v := range votes {
		totals[v.ElectionYear] += v.Votes
	}
	return totals
}

// CheckCrossReferences fails on the first vote whose election has no
// parameters, and on any duplicate vote key.
func CheckCrossReferences(votes []election.PartyVote, params []election.ElectionParameters) error {
	type electionKey struct {
		year int
		typ  string
	}
	type voteKey struct {
		electionKey
		district, party string
	}
	known := make(map[electionKey]struct{}, len(params))
	for _, p := range params {
		known[electionKey{p.ElectionYear, p.ElectionType}] = struct{}{}
	}
	seen := make(map[voteKey]struct{}, len(votes))
	for _, v := range votes {
		ek := electionKey{v.ElectionYear, v.ElectionType}
		if _, ok := known[ek]; !ok {
			return &Error{Kind: MissingCrossReference, Msg: fmt.Sprintf("no election parameters for %s %d", v.ElectionType, v.ElectionYear)}
		}
		vk := voteKey{ek, v.District, v.Party}
		if _, dup := seen[vk]; dup {
			return &Error{Kind: MalformedRecord, Msg: fmt.Sprintf("duplicate votes for %s in %s %d", v.Party, v.District, v.ElectionYear)}
		}
		seen[vk] = struct{}{}
	}
	return nil
}

func sortedYears[T any](m map[int]T) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
