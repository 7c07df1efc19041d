package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadRecords_SkipsHeaderAndComments(t *testing.T) {
	in := "Year;County;Area;Population;Seats\r\n" +
		"2017;Østfold;4187,0;292893;0\r\n" +
		"# 2017;Akershus;4917,0;614026;0\r\n" +
		"2017;Oslo;454,0;673469;0 # capital\r\n" +
		"2021;Oslo;454,0;697010;0\r\n"

	recs, err := ReadRecords(strings.NewReader(in), "CountyData.csv", DecodeDistrictMetric, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "Østfold", recs[0].District)
	require.Equal(t, 2021, recs[1].Year)
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	recs, err := ReadRecords(strings.NewReader("Year;County;Area;Population;Seats\n"), "x.csv", DecodeDistrictMetric, LoadOptions{})
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestReadRecords_FailsOnFirstBadLine(t *testing.T) {
	in := "header\n" +
		"2017;Oslo;454,0;673469;0\n" +
		"2017;Oslo;454,0;many;0\n" +
		"2021;Oslo;x;697010;0\n"

	_, err := ReadRecords(strings.NewReader(in), "CountyData.csv", DecodeDistrictMetric, LoadOptions{})
	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, MalformedRecord, e.Kind)
	require.Equal(t, "CountyData.csv", e.Path)
	require.Equal(t, "2017;Oslo;454,0;many;0", e.Line)
}

func TestReadRecords_BlankLineIsMalformed(t *testing.T) {
	in := "header\n2017;Oslo;454,0;673469;0\n\n"
	_, err := ReadRecords(strings.NewReader(in), "CountyData.csv", DecodeDistrictMetric, LoadOptions{})
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestReadRecords_Windows1252(t *testing.T) {
	// "Østfold" in windows-1252: Ø is 0xD8.
	in := []byte("header\n2017;\xd8stfold;4187,0;292893;0\n")
	recs, err := ReadRecords(strings.NewReader(string(in)), "x.csv", DecodeDistrictMetric, LoadOptions{Encoding: "windows-1252"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "Østfold", recs[0].District)
}

func TestReadRecords_UnknownEncoding(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("header\n"), "x.csv", DecodeDistrictMetric, LoadOptions{Encoding: "klingon"})
	require.Error(t, err)
}

func TestReadRecords_Separator(t *testing.T) {
	in := "header\n2017,Oslo,454.0,673469,0\n"
	recs, err := ReadRecords(strings.NewReader(in), "x.csv", DecodeDistrictMetric, LoadOptions{Separator: ","})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.InDelta(t, 454.0, recs[0].Area, 1e-9)
}

func TestLoadRecords_MissingFile(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "nope.csv"), DecodeElection, LoadOptions{})
	require.ErrorIs(t, err, ErrMissingDirectory)
}

func TestLoadRecords_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Elections.csv")
	if err := os.WriteFile(path, []byte("header\n2017;Sainte Laguës (modified);1.4;4.0;1.8;150;19\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	recs, err := LoadRecords(path, DecodeElection, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 150, recs[0].Seats)
}
