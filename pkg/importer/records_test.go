package importer

import (
	"testing"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/stretchr/testify/require"
)

func TestDecodeElection(t *testing.T) {
	rec, err := DecodeElection("2017;Sainte Laguës (modified);1.4;4.0;1.8;150;19", NewFieldParser("TEST", ";"))
	require.NoError(t, err)
	require.Equal(t, ElectionRecord{
		Year:          2017,
		Algorithm:     election.ModifiedSainteLague,
		FirstDivisor:  1.4,
		Threshold:     4.0,
		AreaFactor:    1.8,
		Seats:         150,
		LevelingSeats: 19,
	}, rec)
}

func TestDecodeElection_Invalid(t *testing.T) {
	p := NewFieldParser("TEST", ";")
	for _, line := range []string{
		"2017;Sainte Laguës (modified);1.4;4.0;1.8;150",
		"2017;Unknown;1.4;4.0;1.8;150;19",
		"year;Sainte Laguës;1.4;4.0;1.8;150;19",
		"2017;Sainte Laguës;1.4;4.0;1.8;150;19.5",
	} {
		_, err := DecodeElection(line, p)
		require.ErrorIs(t, err, ErrMalformedRecord, line)
	}
}

func TestDecodeResult(t *testing.T) {
	line := "01;Østfold;;;;;A;Arbeiderpartiet;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0;"
	rec, err := DecodeResult(line, NewFieldParser("TEST", ";"))
	require.NoError(t, err)
	require.Equal(t, "Østfold", rec.District)
	require.Equal(t, "A", rec.PartyCode)
	require.Equal(t, "Arbeiderpartiet", rec.PartyName)
	require.InDelta(t, 32.1, rec.Share, 1e-9)
	require.Equal(t, 51545, rec.TotalVotes)
}

func TestDecodeResult_Invalid(t *testing.T) {
	p := NewFieldParser("TEST", ";")
	for name, line := range map[string]string{
		"short district": "01;Øs;;;;;A;Arbeiderpartiet;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0;",
		"empty code":     "01;Østfold;;;;;;Arbeiderpartiet;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0;",
		"long code":      "01;Østfold;;;;;ABCDEFGHIJK;Arbeiderpartiet;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0;",
		"empty name":     "01;Østfold;;;;;A;;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0;",
		"bad share":      "01;Østfold;;;;;A;Arbeiderpartiet;x;216293;12947;38598;51545;-2,9;-8,1;3;0;",
		"bad votes":      "01;Østfold;;;;;A;Arbeiderpartiet;32,1;216293;12947;38598;51 545;-2,9;-8,1;3;0;",
		"17 fields":      "01;Østfold;;;;;A;Arbeiderpartiet;32,1;216293;12947;38598;51545;-2,9;-8,1;3;0",
		"negative votes": "01;Oslo;;;;;A;Arbeiderpartiet;32,1;1000;10;10;-500;0;0;1;0;",
	} {
		_, err := DecodeResult(line, p)
		require.ErrorIs(t, err, ErrMalformedRecord, name)
	}
}

func TestDecodeResult_NegativeVotesNamesField(t *testing.T) {
	_, err := DecodeResult("01;Oslo;;;;;A;Arbeiderpartiet;32,1;1000;10;10;-500;0;0;1;0;", NewFieldParser("TEST", ";"))
	require.ErrorIs(t, err, ErrMalformedRecord)
	require.ErrorContains(t, err, "AntallStemmerTotalt")
}

func TestDecodeDistrictMetric(t *testing.T) {
	rec, err := DecodeDistrictMetric("1977;Akershus;4917,0;369000;10", NewFieldParser("TEST", ";"))
	require.NoError(t, err)
	require.Equal(t, DistrictMetricRecord{Year: 1977, District: "Akershus", Area: 4917, Population: 369000, Seats: 10}, rec)

	_, err = DecodeDistrictMetric("1977;Ak;4917,0;369000;10", NewFieldParser("TEST", ";"))
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = DecodeDistrictMetric("1977;A district name longer than thirty-five;1;1;1", NewFieldParser("TEST", ";"))
	require.ErrorIs(t, err, ErrMalformedRecord)
}
