package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// aggregateAreas are supranational regions that never enter the pipeline.
var aggregateAreas = map[string]bool{
	"EU":        true,
	"EU27":      true,
	"EU27_2020": true,
	"EU28":      true,
}

// maxParallelLoads bounds concurrent file reads for one topic.
const maxParallelLoads = 4

// Dataset is every subtopic table of one topic.
type Dataset struct {
	Topic     string
	Subtopics map[string]*Table
	Errors    []*LoadError
}

// Table returns the table of a subtopic. A subtopic whose file failed to
// load reports ErrSubtopicFailed.
func (d *Dataset) Table(subtopic string) (*Table, error) {
	if t, ok := d.Subtopics[subtopic]; ok {
		return t, nil
	}
	for _, e := range d.Errors {
		if e.Subtopic == subtopic {
			return nil, fmt.Errorf("%w: %v", ErrSubtopicFailed, e)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSubtopic, subtopic)
}

// --- 1. CSV PARSING ---

// columns locates the known columns in a header row. -1 means absent.
type columns struct {
	area, measure, period, value, unitMult int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1, -1}
	for i, h := range header {
		switch normalizeHeader(h) {
		case "REF_AREA":
			cols.area = i
		case "MEASURE":
			cols.measure = i
		case "TIME_PERIOD":
			cols.period = i
		case "OBS_VALUE":
			cols.value = i
		case "UNIT_MULT":
			cols.unitMult = i
		}
	}
	if cols.period < 0 {
		return cols, fmt.Errorf("%w: TIME_PERIOD", ErrMissingColumn)
	}
	if cols.value < 0 {
		return cols, fmt.Errorf("%w: OBS_VALUE", ErrMissingColumn)
	}
	return cols, nil
}

// normalizeHeader strips a UTF-8 BOM and whitespace and upper-cases the name.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToUpper(strings.TrimSpace(h))
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseValue reads OBS_VALUE; anything unparsable becomes NaN.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseUnitMult reads UNIT_MULT; empty or unparsable means 0.
func parseUnitMult(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return int(f)
	}
	return 0
}

// parsePeriod reads TIME_PERIOD. OECD exports use plain years; a trailing
// ".0" from spreadsheet round-trips is tolerated.
func parsePeriod(s string) (int32, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return int32(n), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return int32(f), true
	}
	return 0, false
}

// --- 2. MAIN LOADER ---

// LoadCSV reads an observation table. OBS_VALUE is scaled by 10^UNIT_MULT
// when that column exists, and aggregate regions are dropped.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	b := newTableBuilder(1024)
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		area := field(rec, cols.area)
		if aggregateAreas[area] {
			continue
		}
		raw := field(rec, cols.period)
		period, ok := parsePeriod(raw)
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", line, ErrBadPeriod, raw)
		}
		value := parseValue(field(rec, cols.value))
		if cols.unitMult >= 0 {
			value *= math.Pow10(parseUnitMult(field(rec, cols.unitMult)))
		}
		b.add(area, field(rec, cols.measure), period, value)
	}
	return b.table(), nil
}

// LoadFile opens and parses one CSV file.
func LoadFile(path string) (*Table, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := LoadCSV(f)
	if err != nil {
		return nil, err
	}
	log.Debugf("Load Complete. File: %s. Rows: %d. Time: %v", path, t.Len(), time.Since(start))
	return t, nil
}

// LoadTopic reads every subtopic file of a topic. A file that fails is
// reported in Dataset.Errors and the remaining subtopics still load.
func LoadTopic(ctx context.Context, cat Catalog, topicID string) (*Dataset, error) {
	topic, ok := cat.Topic(topicID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopic, topicID)
	}
	if len(topic.Subtopics) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, topic.Name)
	}

	start := time.Now()
	ds := &Dataset{Topic: topic.ID, Subtopics: make(map[string]*Table, len(topic.Subtopics))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for _, src := range topic.Subtopics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := LoadFile(src.Path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				le := &LoadError{Subtopic: src.ID, Path: src.Path, Err: err}
				log.Errorf("%v", le)
				ds.Errors = append(ds.Errors, le)
				return nil
			}
			ds.Subtopics[src.ID] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Keep catalog order for reporting.
	sortLoadErrors(ds.Errors, topic.Subtopics)

	log.Infof("Topic %s loaded. Subtopics: %d. Failed: %d. Time: %v",
		topic.ID, len(ds.Subtopics), len(ds.Errors), time.Since(start))
	return ds, nil
}

// LoadIndicator reads one of the correlation indicator tables.
func LoadIndicator(cat Catalog, id string) (*Table, error) {
	src, ok := cat.Indicator(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, id)
	}
	t, err := LoadFile(src.Path)
	if err != nil {
		return nil, &LoadError{Subtopic: src.ID, Path: src.Path, Err: err}
	}
	return t, nil
}

// LoadPopulation reads the annual population table used to size bubbles.
func LoadPopulation(cat Catalog) (*Table, error) {
	if cat.Population == "" {
		return nil, errors.New("no population dataset configured")
	}
	t, err := LoadFile(cat.Population)
	if err != nil {
		return nil, &LoadError{Subtopic: "population", Path: cat.Population, Err: err}
	}
	return t, nil
}

func sortLoadErrors(errs []*LoadError, order []Source) {
	rank := make(map[string]int, len(order))
	for i, s := range order {
		rank[s.ID] = i
	}
	for i := 1; i < len(errs); i++ {
		for j := i; j > 0 && rank[errs[j].Subtopic] < rank[errs[j-1].Subtopic]; j-- {
			errs[j], errs[j-1] = errs[j-1], errs[j]
		}
	}
}
