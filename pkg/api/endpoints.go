package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/kit"
)

// Shared request/response types used by both HTTP and MCP transports.

type districtsReq struct {
	Year int
}

type votesReq struct {
	Year     int
	Party    string
	District string
}

type metricsReq struct {
	Year     int
	District string
}

type parametersReq struct {
	Year int
}

// previousReq selects the last Number elections up to Year.
type previousReq struct {
	Year     int
	Number   int
	Party    string
	District string
}

// listElement is the key/value pair of the v2 district seat list.
type listElement struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// parametersV2 renders district seats as a SUM-headed list.
type parametersV2 struct {
	ElectionYear  int                          `json:"electionYear"`
	ElectionType  string                       `json:"electionType"`
	Algorithm     election.AlgorithmParameters `json:"algorithm"`
	Threshold     float64                      `json:"threshold"`
	AreaFactor    float64                      `json:"areaFactor"`
	DistrictSeats []listElement                `json:"districtSeats"`
	LevelingSeats int                          `json:"levelingSeats"`
	TotalVotes    int                          `json:"totalVotes"`
}

func toV2(params []election.ElectionParameters) []parametersV2 {
	out := make([]parametersV2, 0, len(params))
	for _, p := range params {
		v := parametersV2{
			ElectionYear:  p.ElectionYear,
			ElectionType:  p.ElectionType,
			Algorithm:     p.Algorithm,
			Threshold:     p.Threshold,
			AreaFactor:    p.AreaFactor,
			LevelingSeats: p.LevelingSeats,
			TotalVotes:    p.TotalVotes,
		}
		for _, s := range p.DistrictSeatList() {
			v.DistrictSeats = append(v.DistrictSeats, listElement{Key: s.District, Value: s.Seats})
		}
		out = append(out, v)
	}
	return out
}

// endpoints are the query actions backed by the registry.
type endpoints struct {
	years            kit.Endpoint
	parties          kit.Endpoint
	districts        kit.Endpoint
	votes            kit.Endpoint
	previousVotes    kit.Endpoint
	metrics          kit.Endpoint
	previousMetrics  kit.Endpoint
	parametersV2     kit.Endpoint
	previousParamsV2 kit.Endpoint
	parametersV3     kit.Endpoint
	previousParamsV3 kit.Endpoint
	countries        kit.Endpoint
	country          kit.Endpoint
	electionType     kit.Endpoint
	election         kit.Endpoint
}

func newEndpoints(reg *election.Registry, logger *slog.Logger) *endpoints {
	wrap := func(name string, e kit.Endpoint) kit.Endpoint {
		return kit.Chain(kit.Recover(), kit.Logging(logger, name))(e)
	}
	return &endpoints{
		years:            wrap("years", yearsEndpoint(reg)),
		parties:          wrap("parties", partiesEndpoint(reg)),
		districts:        wrap("districts", districtsEndpoint(reg)),
		votes:            wrap("votes", votesEndpoint(reg)),
		previousVotes:    wrap("votes_previous", previousVotesEndpoint(reg)),
		metrics:          wrap("metrics", metricsEndpoint(reg)),
		previousMetrics:  wrap("metrics_previous", previousMetricsEndpoint(reg)),
		parametersV2:     wrap("parameters_v2", parametersEndpoint(reg, true)),
		previousParamsV2: wrap("parameters_previous_v2", previousParametersEndpoint(reg, true)),
		parametersV3:     wrap("parameters", parametersEndpoint(reg, false)),
		previousParamsV3: wrap("parameters_previous", previousParametersEndpoint(reg, false)),
		countries:        wrap("countries", countriesEndpoint(reg)),
		country:          wrap("country", countryEndpoint(reg)),
		electionType:     wrap("election_type", electionTypeEndpoint(reg)),
		election:         wrap("election", electionEndpoint(reg)),
	}
}

func yearsEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return reg.Years(), nil
	}
}

func partiesEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return reg.Parties(), nil
	}
}

func districtsEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*districtsReq)
		return reg.Districts(req.Year), nil
	}
}

func votesEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*votesReq)
		return reg.Votes(election.VoteFilter{Year: req.Year, Party: req.Party, District: req.District}), nil
	}
}

func previousVotesEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*previousReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		return reg.PreviousVotes(req.Year, req.Number, req.Party, req.District), nil
	}
}

func metricsEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*metricsReq)
		return reg.Metrics(election.MetricFilter{Year: req.Year, District: req.District}), nil
	}
}

func previousMetricsEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*previousReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		return reg.PreviousMetrics(req.Year, req.Number, req.District), nil
	}
}

func parametersEndpoint(reg *election.Registry, v2 bool) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*parametersReq)
		params := reg.Parameters(req.Year)
		if v2 {
			return toV2(params), nil
		}
		return params, nil
	}
}

func previousParametersEndpoint(reg *election.Registry, v2 bool) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*previousReq)
		if err := req.validate(); err != nil {
			return nil, err
		}
		params := reg.PreviousParameters(req.Year, req.Number)
		if v2 {
			return toV2(params), nil
		}
		return params, nil
	}
}

func (r *previousReq) validate() error {
	if r.Number < 0 {
		return &badRequestError{msg: fmt.Sprintf("number must not be negative, got %d", r.Number)}
	}
	return nil
}

// hierarchyReq addresses a node of the v1 country tree.
type hierarchyReq struct {
	Country      string
	ElectionType string
	Year         int
	Deep         bool
}

func countriesEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*hierarchyReq)
		return reg.Countries(req.Deep), nil
	}
}

func countryEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*hierarchyReq)
		return reg.Country(req.Country, req.Deep)
	}
}

func electionTypeEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*hierarchyReq)
		return reg.ElectionType(req.Country, req.ElectionType, req.Deep)
	}
}

func electionEndpoint(reg *election.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*hierarchyReq)
		return reg.Election(req.Country, req.ElectionType, req.Year, req.Deep)
	}
}

// badRequestError marks invalid query input.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }
