// Package election holds the immutable election entities and the read-only
// query registry served by the API.
package election

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Party is a political party as it appears in the result files.
type Party struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// DistrictMetric describes one district in one election year.
// Seats is zero when the district has no predetermined seat count.
type DistrictMetric struct {
	ElectionYear int     `json:"electionYear"`
	District     string  `json:"district"`
	Area         float64 `json:"area"`
	Population   int     `json:"population"`
	Seats        int     `json:"seats"`
}

// PartyVote is the vote count of one party in one district.
type PartyVote struct {
	ElectionYear int     `json:"electionYear"`
	District     string  `json:"district"`
	Party        string  `json:"party"`
	ElectionType string  `json:"electionType"`
	Votes        int     `json:"votes"`
	Share        float64 `json:"-"`
}

// Algorithm is one of the supported seat allocation methods. The zero value
// is not a valid algorithm.
type Algorithm uint8

const (
	ModifiedSainteLague Algorithm = iota + 1
	SainteLague
	DHondt
)

// Algorithms lists every valid algorithm in canonical order.
var Algorithms = []Algorithm{ModifiedSainteLague, SainteLague, DHondt}

var algorithmNames = map[Algorithm]string{
	ModifiedSainteLague: "Sainte Laguës (modified)",
	SainteLague:         "Sainte Laguës",
	DHondt:              "d'Hondt",
}

// String returns the canonical name as written in the election files.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Valid reports whether a is one of the known algorithms.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("marshal algorithm: invalid value %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, ok := ParseAlgorithm(string(text))
	if !ok {
		return fmt.Errorf("unmarshal algorithm: unknown name %q", text)
	}
	*a = parsed
	return nil
}

// FoldName normalizes s for case-insensitive name comparison.
func FoldName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

var algorithmsByName = func() map[string]Algorithm {
	m := make(map[string]Algorithm, len(Algorithms))
	for _, a := range Algorithms {
		m[FoldName(a.String())] = a
	}
	return m
}()

// ParseAlgorithm matches name case-insensitively against the canonical
// algorithm names.
func ParseAlgorithm(name string) (Algorithm, bool) {
	a, ok := algorithmsByName[FoldName(name)]
	return a, ok
}

// FirstDivisorKey names the single parameter carried by ModifiedSainteLague.
const FirstDivisorKey = "First Divisor"

// Parameter is a named numeric algorithm parameter.
type Parameter struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AlgorithmParameters is an algorithm together with its parameters.
type AlgorithmParameters struct {
	Algorithm  Algorithm   `json:"algorithm"`
	Parameters []Parameter `json:"parameters"`
}

// FirstDivisor returns the first divisor parameter, if present.
func (p AlgorithmParameters) FirstDivisor() (float64, bool) {
	for _, param := range p.Parameters {
		if param.Key == FirstDivisorKey {
			return param.Value, true
		}
	}
	return 0, false
}

// SumDistrict is the pseudo-district carrying the seat total in the
// district seat list.
const SumDistrict = "SUM"

// DistrictSeat is a predetermined seat count for one district.
type DistrictSeat struct {
	District string `json:"district"`
	Seats    int    `json:"seats"`
}

// ElectionParameters are the seat allocation parameters of one election.
// SeatOverrides is only populated when AreaFactor is negative.
type ElectionParameters struct {
	ElectionYear  int                 `json:"electionYear"`
	ElectionType  string              `json:"electionType"`
	Algorithm     AlgorithmParameters `json:"algorithm"`
	Threshold     float64             `json:"threshold"`
	AreaFactor    float64             `json:"areaFactor"`
	DistrictSeats int                 `json:"districtSeats"`
	LevelingSeats int                 `json:"levelingSeats"`
	TotalVotes    int                 `json:"totalVotes"`
	SeatOverrides []DistrictSeat      `json:"-"`
}

// PredeterminedSeats reports whether district seats are fixed per district.
func (p ElectionParameters) PredeterminedSeats() bool {
	return p.AreaFactor < 0
}

// DistrictSeatList renders the seat total as a list headed by a SUM entry,
// followed by any per-district overrides.
func (p ElectionParameters) DistrictSeatList() []DistrictSeat {
	list := make([]DistrictSeat, 0, len(p.SeatOverrides)+1)
	list = append(list, DistrictSeat{District: SumDistrict, Seats: p.DistrictSeats})
	return append(list, p.SeatOverrides...)
}

// Country is the top of the election hierarchy.
type Country struct {
	Code          string   `json:"countryCode"`
	Name          string   `json:"internationalName"`
	ElectionTypes []string `json:"electionTypes"`
}

// Dataset is everything produced by one seeding run. It is committed to a
// store as a unit.
type Dataset struct {
	Country            Country
	DistrictMetrics    []DistrictMetric
	ElectionParameters []ElectionParameters
	PartyVotes         []PartyVote
	Parties            []Party
}

// Empty reports whether the dataset holds no votes.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.PartyVotes) == 0
}

