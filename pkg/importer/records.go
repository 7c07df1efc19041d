package importer

import "github.com/hazyhaar/lavinia/pkg/election"

// Decoder turns one raw line into a typed record.
type Decoder[T any] func(line string, p *FieldParser) (T, error)

// ElectionRecord is one row of Elections.csv.
type ElectionRecord struct {
	Year          int
	Algorithm     election.Algorithm
	FirstDivisor  float64
	Threshold     float64
	AreaFactor    float64
	Seats         int
	LevelingSeats int
}

// ResultRecord holds the consumed columns of one row of a yearly result file.
type ResultRecord struct {
	District   string
	PartyCode  string
	PartyName  string
	Share      float64
	TotalVotes int
}

// DistrictMetricRecord is one row of CountyData.csv.
type DistrictMetricRecord struct {
	Year       int
	District   string
	Area       float64
	Population int
	Seats      int
}

const (
	electionFields = 7
	resultFields   = 18
	metricFields   = 5
)

// Result file columns.
const (
	colDistrict   = 1
	colPartyCode  = 6
	colPartyName  = 7
	colShare      = 8
	colTotalVotes = 12
)

// DecodeElection decodes year;algorithm;firstDivisor;threshold;areaFactor;seats;levelingSeats.
func DecodeElection(line string, p *FieldParser) (ElectionRecord, error) {
	var rec ElectionRecord
	f, err := p.ParseLength(line, electionFields)
	if err != nil {
		return rec, err
	}
	if rec.Year, err = p.ParseInt(f[0], "Year"); err != nil {
		return rec, err
	}
	if rec.Algorithm, err = p.ParseAlgorithm(f[1], "Algorithm"); err != nil {
		return rec, err
	}
	if rec.FirstDivisor, err = p.ParseDouble(f[2], "FirstDivisor"); err != nil {
		return rec, err
	}
	if rec.Threshold, err = p.ParseDouble(f[3], "Threshold"); err != nil {
		return rec, err
	}
	if rec.AreaFactor, err = p.ParseDouble(f[4], "AreaFactor"); err != nil {
		return rec, err
	}
	if rec.Seats, err = p.ParseInt(f[5], "Seats"); err != nil {
		return rec, err
	}
	if rec.LevelingSeats, err = p.ParseInt(f[6], "LevelingSeats"); err != nil {
		return rec, err
	}
	return rec, nil
}

// DecodeResult decodes a row of the national result export. Only district,
// party code, party name, vote share and total votes are kept.
func DecodeResult(line string, p *FieldParser) (ResultRecord, error) {
	var rec ResultRecord
	f, err := p.ParseLength(line, resultFields)
	if err != nil {
		return rec, err
	}
	if rec.District, err = p.ParseString(f[colDistrict], "Fylkenavn", 3, Unbounded); err != nil {
		return rec, err
	}
	if rec.PartyCode, err = p.ParseString(f[colPartyCode], "Partikode", 1, 10); err != nil {
		return rec, err
	}
	if rec.PartyName, err = p.ParseString(f[colPartyName], "Partinavn", 1, Unbounded); err != nil {
		return rec, err
	}
	if rec.Share, err = p.ParseDouble(f[colShare], "Oppslutning"); err != nil {
		return rec, err
	}
	if rec.TotalVotes, err = p.ParseInt(f[colTotalVotes], "AntallStemmerTotalt"); err != nil {
		return rec, err
	}
	if rec.TotalVotes < 0 {
		return rec, p.fail("AntallStemmerTotalt: negative vote count %d", rec.TotalVotes)
	}
	return rec, nil
}

// DecodeDistrictMetric decodes year;district;area;population;seats.
func DecodeDistrictMetric(line string, p *FieldParser) (DistrictMetricRecord, error) {
	var rec DistrictMetricRecord
	f, err := p.ParseLength(line, metricFields)
	if err != nil {
		return rec, err
	}
	if rec.Year, err = p.ParseInt(f[0], "Year"); err != nil {
		return rec, err
	}
	if rec.District, err = p.ParseString(f[1], "County", 3, 35); err != nil {
		return rec, err
	}
	if rec.Area, err = p.ParseDouble(f[2], "Area"); err != nil {
		return rec, err
	}
	if rec.Population, err = p.ParseInt(f[3], "Population"); err != nil {
		return rec, err
	}
	if rec.Seats, err = p.ParseInt(f[4], "Seats"); err != nil {
		return rec, err
	}
	return rec, nil
}
