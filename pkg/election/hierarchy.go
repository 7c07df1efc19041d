package election

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a hierarchy lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Election type codes and their printable names.
var electionTypeNames = map[string]string{
	"PE": "Parliamentary Election",
}

// electionTypeAliases maps accepted lower-case spellings to type codes.
var electionTypeAliases = map[string]string{
	"pe":                     "PE",
	"parliamentary election": "PE",
	"stortingsvalg":          "PE",
}

// ElectionTypeName returns the printable name of an election type code.
func ElectionTypeName(code string) string {
	if name, ok := electionTypeNames[code]; ok {
		return name
	}
	return code
}

// ParseElectionType resolves a code, printable name or Norwegian name to an
// election type code.
func ParseElectionType(s string) (string, bool) {
	code, ok := electionTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return code, ok
}

// CountryNode is a country with, optionally, its election types.
type CountryNode struct {
	CountryCode       string             `json:"countryCode"`
	InternationalName string             `json:"internationalName"`
	ElectionTypes     []ElectionTypeNode `json:"electionTypes,omitempty"`
}

// ElectionTypeNode is one kind of election with, optionally, its elections.
type ElectionTypeNode struct {
	ElectionTypeCode  string         `json:"electionTypeCode"`
	InternationalName string         `json:"internationalName"`
	Elections         []ElectionNode `json:"elections,omitempty"`
}

// ElectionNode is one election with, optionally, its counties.
type ElectionNode struct {
	Year          int          `json:"year"`
	Algorithm     Algorithm    `json:"algorithm"`
	FirstDivisor  float64      `json:"firstDivisor"`
	Threshold     float64      `json:"threshold"`
	Seats         int          `json:"seats"`
	LevelingSeats int          `json:"levelingSeats"`
	Counties      []CountyNode `json:"counties,omitempty"`
}

// CountyNode is one district with, optionally, its results.
type CountyNode struct {
	Name    string       `json:"name"`
	Seats   int          `json:"seats"`
	Results []ResultNode `json:"results,omitempty"`
}

// ResultNode is the result of one party in one county.
type ResultNode struct {
	PartyName  string  `json:"partyName"`
	PartyCode  string  `json:"partyCode"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// Countries returns the served countries. deep expands the whole tree.
func (r *Registry) Countries(deep bool) []CountryNode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ds.Country.Code == "" {
		return []CountryNode{}
	}
	depth := 0
	if deep {
		depth = levelResults
	}
	return []CountryNode{r.countryNode(depth)}
}

// Country returns one country with its election types, or the whole tree
// when deep.
func (r *Registry) Country(code string, deep bool) (CountryNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.checkCountry(code); err != nil {
		return CountryNode{}, err
	}
	return r.countryNode(depthFor(levelTypes, deep)), nil
}

// ElectionType returns one election type with its elections, or the whole
// subtree when deep.
func (r *Registry) ElectionType(country, electionType string, deep bool) (ElectionTypeNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, err := r.checkElectionType(country, electionType)
	if err != nil {
		return ElectionTypeNode{}, err
	}
	return r.electionTypeNode(code, depthFor(levelElections, deep)), nil
}

// Election returns one election with its counties, or with every result
// when deep.
func (r *Registry) Election(country, electionType string, year int, deep bool) (ElectionNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	code, err := r.checkElectionType(country, electionType)
	if err != nil {
		return ElectionNode{}, err
	}
	for _, p := range r.ds.ElectionParameters {
		if p.ElectionType == code && p.ElectionYear == year {
			return r.electionNode(p, depthFor(levelCounties, deep)), nil
		}
	}
	return ElectionNode{}, fmt.Errorf("election %s %d: %w", code, year, ErrNotFound)
}

// Tree levels below a country.
const (
	levelTypes = iota + 1
	levelElections
	levelCounties
	levelResults
)

func depthFor(level int, deep bool) int {
	if deep {
		return levelResults
	}
	return level
}

func (r *Registry) checkCountry(code string) error {
	if r.ds.Country.Code == "" || !strings.EqualFold(code, r.ds.Country.Code) {
		return fmt.Errorf("country %q: %w", code, ErrNotFound)
	}
	return nil
}

func (r *Registry) checkElectionType(country, electionType string) (string, error) {
	if err := r.checkCountry(country); err != nil {
		return "", err
	}
	code, ok := ParseElectionType(electionType)
	if ok {
		for _, t := range r.ds.Country.ElectionTypes {
			if t == code {
				return code, nil
			}
		}
	}
	return "", fmt.Errorf("election type %q: %w", electionType, ErrNotFound)
}

func (r *Registry) countryNode(depth int) CountryNode {
	n := CountryNode{
		CountryCode:       r.ds.Country.Code,
		InternationalName: r.ds.Country.Name,
	}
	if depth < levelTypes {
		return n
	}
	n.ElectionTypes = []ElectionTypeNode{}
	for _, code := range r.ds.Country.ElectionTypes {
		n.ElectionTypes = append(n.ElectionTypes, r.electionTypeNode(code, depth))
	}
	return n
}

func (r *Registry) electionTypeNode(code string, depth int) ElectionTypeNode {
	n := ElectionTypeNode{ElectionTypeCode: code, InternationalName: ElectionTypeName(code)}
	if depth < levelElections {
		return n
	}
	n.Elections = []ElectionNode{}
	for _, p := range r.ds.ElectionParameters {
		if p.ElectionType == code {
			n.Elections = append(n.Elections, r.electionNode(p, depth))
		}
	}
	return n
}

func (r *Registry) electionNode(p ElectionParameters, depth int) ElectionNode {
	n := ElectionNode{
		Year:          p.ElectionYear,
		Algorithm:     p.Algorithm.Algorithm,
		Threshold:     p.Threshold,
		Seats:         p.DistrictSeats,
		LevelingSeats: p.LevelingSeats,
	}
	n.FirstDivisor, _ = p.Algorithm.FirstDivisor()
	if depth < levelCounties {
		return n
	}

	n.Counties = []CountyNode{}
	index := make(map[string]int)
	for _, m := range r.ds.DistrictMetrics {
		if m.ElectionYear != p.ElectionYear {
			continue
		}
		index[m.District] = len(n.Counties)
		n.Counties = append(n.Counties, CountyNode{Name: m.District, Seats: m.Seats})
	}
	if depth < levelResults {
		return n
	}

	for _, v := range r.ds.PartyVotes {
		if v.ElectionYear != p.ElectionYear || v.ElectionType != p.ElectionType {
			continue
		}
		i, ok := index[v.District]
		if !ok {
			index[v.District] = len(n.Counties)
			i = len(n.Counties)
			n.Counties = append(n.Counties, CountyNode{Name: v.District})
		}
		n.Counties[i].Results = append(n.Counties[i].Results, ResultNode{
			PartyName:  r.parties[v.Party],
			PartyCode:  v.Party,
			Votes:      v.Votes,
			Percentage: v.Share,
		})
	}
	return n
}
