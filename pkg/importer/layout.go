package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/lavinia/pkg/election"
)

// File names fixed by the data layout.
const (
	MetricsFile   = "CountyData.csv"
	ElectionsFile = "Elections.csv"
)

// Source is one input file. Path names it in errors; Open yields its bytes.
type Source struct {
	Path string
	Open func() (io.ReadCloser, error)
}

// FileSource returns a Source reading the file at path.
func FileSource(path string) Source {
	return Source{Path: path, Open: func() (io.ReadCloser, error) { return os.Open(path) }}
}

// BytesSource returns a Source over in-memory data.
func BytesSource(name string, data []byte) Source {
	return Source{Path: name, Open: func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}}
}

// ResultSource is the result file of one election year.
type ResultSource struct {
	Year int
	Source
}

// ElectionSeries is the parameters file and yearly result files of one
// election type.
type ElectionSeries struct {
	Type       string
	Parameters Source
	Results    []ResultSource
}

// Layout is the enumerated set of sources for one country.
type Layout struct {
	Country election.Country
	Metrics Source
	Series  []ElectionSeries
	Options LoadOptions
}

// ScanLayout enumerates <root>/<code>/CountyData.csv and, for each election
// type, <type>/Elections.csv plus every <type>/<year>.csv.
func ScanLayout(root string, country election.Country, opts LoadOptions) (*Layout, error) {
	dir := filepath.Join(root, country.Code)
	if err := requireDir(dir); err != nil {
		return nil, err
	}

	l := &Layout{
		Country: country,
		Metrics: FileSource(filepath.Join(dir, MetricsFile)),
		Options: opts,
	}
	for _, typ := range country.ElectionTypes {
		series, err := scanSeries(filepath.Join(dir, typ), typ)
		if err != nil {
			return nil, err
		}
		l.Series = append(l.Series, series)
	}
	return l, nil
}

func scanSeries(dir, typ string) (ElectionSeries, error) {
	series := ElectionSeries{Type: typ, Parameters: FileSource(filepath.Join(dir, ElectionsFile))}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return series, missingDir(dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == ElectionsFile || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".csv" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSuffix(name, ".csv"))
		if err != nil {
			return series, &Error{Kind: MissingDirectory, Path: filepath.Join(dir, name), Msg: "file name is not an election year"}
		}
		series.Results = append(series.Results, ResultSource{Year: year, Source: FileSource(filepath.Join(dir, name))})
	}
	sort.Slice(series.Results, func(i, j int) bool { return series.Results[i].Year < series.Results[j].Year })
	return series, nil
}

func requireDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return missingDir(dir, err)
	}
	if !fi.IsDir() {
		return missingDir(dir, fmt.Errorf("not a directory"))
	}
	return nil
}

// loadSource opens src and decodes its records. A source that does not exist
// is a MissingDirectory.
func loadSource[T any](src Source, decode Decoder[T], opts LoadOptions) ([]T, error) {
	rc, err := src.Open()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missingDir(src.Path, err)
		}
		return nil, fmt.Errorf("open %s: %w", src.Path, err)
	}
	defer rc.Close()
	return ReadRecords(rc, src.Path, decode, opts)
}
