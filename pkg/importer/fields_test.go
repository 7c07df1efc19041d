package importer

import (
	"errors"
	"testing"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	p := NewFieldParser("test.csv", ";")

	fields, err := p.ParseLength("A;B;C;", 4)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C", ""}, fields)

	_, err = p.ParseLength("A;B;C;", 3)
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = p.ParseLength("", 1)
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = p.ParseLength(";", 1)
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestParseLength_CustomSeparator(t *testing.T) {
	p := NewFieldParser("test.csv", ",")
	fields, err := p.ParseLength("2017,Oslo", 2)
	require.NoError(t, err)
	require.Equal(t, []string{"2017", "Oslo"}, fields)
}

func TestParseInt(t *testing.T) {
	p := NewFieldParser("test.csv", "")
	for in, want := range map[string]int{"0": 0, "150": 150, "-1": -1} {
		got, err := p.ParseInt(in, "Seats")
		if err != nil {
			t.Fatalf("ParseInt(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseInt(%q) = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "1.5", "1,2", "1 000", "abc"} {
		if _, err := p.ParseInt(in, "Seats"); !errors.Is(err, ErrMalformedRecord) {
			t.Errorf("ParseInt(%q) err = %v, want MalformedRecord", in, err)
		}
	}
}

func TestParseDouble(t *testing.T) {
	p := NewFieldParser("test.csv", "")
	for in, want := range map[string]float64{
		"0,123":  0.123,
		"-0,123": -0.123,
		"1.4":    1.4,
		"4":      4,
		"32,1":   32.1,
	} {
		got, err := p.ParseDouble(in, "Threshold")
		require.NoError(t, err, in)
		require.InDelta(t, want, got, 1e-9, in)
	}
	for _, in := range []string{"", "2-3", "1,2,3", "NaN", "Inf", "0x1p2", "0X10", "1_000"} {
		_, err := p.ParseDouble(in, "Threshold")
		require.ErrorIs(t, err, ErrMalformedRecord, in)
	}
}

func TestParseString(t *testing.T) {
	p := NewFieldParser("test.csv", "")

	s, err := p.ParseString("Østfold", "County", 3, 35)
	require.NoError(t, err)
	require.Equal(t, "Østfold", s)

	// Length counts characters, not bytes.
	_, err = p.ParseString("Øst", "County", 3, 3)
	require.NoError(t, err)

	_, err = p.ParseString("Ab", "County", 3, 35)
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = p.ParseString("ABCDEFGHIJK", "Partikode", 1, 10)
	require.ErrorIs(t, err, ErrMalformedRecord)

	_, err = p.ParseString("a very long party name indeed", "Partinavn", 1, Unbounded)
	require.NoError(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	p := NewFieldParser("test.csv", "")
	cases := map[string]election.Algorithm{
		"Sainte Laguës (modified)": election.ModifiedSainteLague,
		"sainte laguës (MODIFIED)": election.ModifiedSainteLague,
		"Sainte Laguës":            election.SainteLague,
		"D'HONDT":                  election.DHondt,
		" d'Hondt ":                election.DHondt,
	}
	for in, want := range cases {
		got, err := p.ParseAlgorithm(in, "Algorithm")
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := p.ParseAlgorithm("Hare-Niemeyer", "Algorithm")
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestFieldParser_ErrorCarriesLine(t *testing.T) {
	p := NewFieldParser("Elections.csv", ";")
	_, err := p.ParseLength("2017;x", 2)
	require.NoError(t, err)
	_, err = p.ParseInt("x", "Seats")

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, MalformedRecord, e.Kind)
	require.Equal(t, "Elections.csv", e.Path)
	require.Equal(t, "2017;x", e.Line)
	require.Contains(t, err.Error(), "Seats")
}
