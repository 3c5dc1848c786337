// Package resultlog stores benchmark measurements in an
// append-only CSV file that is shared by every run.
package resultlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/unixpickle/essentials"
)

// DefaultFilename is the name of the log inside the results
// directory.
const DefaultFilename = "timings.csv"

// ErrMissingLog is wrapped by ReadAll when no run has ever
// written the log.
var ErrMissingLog = errors.New("no results log found")

// Header names the columns of the log, in order.
var Header = []string{"procs", "compute_time", "comm_time", "total_time", "result"}

// A Row is one measurement, written exactly once.
type Row struct {
	Procs       int
	ComputeTime time.Duration
	CommTime    time.Duration
	TotalTime   time.Duration
	Result      float64
}

// Record formats the row as CSV fields.
// Times are in seconds and every float has 6 decimal places.
func (r *Row) Record() []string {
	return []string{
		strconv.Itoa(r.Procs),
		formatFloat(r.ComputeTime.Seconds()),
		formatFloat(r.CommTime.Seconds()),
		formatFloat(r.TotalTime.Seconds()),
		formatFloat(r.Result),
	}
}

// A Log is a CSV file of Rows.
//
// Concurrent appends from overlapping runs are only
// coordinated if Lock is set.
type Log struct {
	Path string

	// Lock enables an advisory file lock around every
	// append, using a sibling file with a ".lock" suffix.
	Lock bool
}

// NewLog creates a Log for the default file name inside of
// a results directory.
func NewLog(dir string) *Log {
	return &Log{Path: filepath.Join(dir, DefaultFilename)}
}

// Append writes a row to the end of the log, creating the
// log's directory and header row if necessary.
func (l *Log) Append(row *Row) (err error) {
	defer func() {
		err = essentials.AddCtx("append to "+l.Path, err)
	}()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return err
	}

	if l.Lock {
		fileLock := flock.New(l.Path + ".lock")
		if err := fileLock.Lock(); err != nil {
			return err
		}
		defer fileLock.Unlock()
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		w.Write(Header)
	}
	w.Write(row.Record())
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadAll reads every row in the log.
//
// Columns are matched by the names in the header row, so
// their order does not matter.
func (l *Log) ReadAll() ([]*Row, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingLog, l.Path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

// ReadRows parses a CSV stream in the log format.
func ReadRows(r io.Reader) ([]*Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, essentials.AddCtx("read header", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range Header {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("read header: missing column %q", name)
		}
	}

	var rows []*Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		} else if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		row, err := parseRecord(record, columns)
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("line %d", line), err)
		}
		rows = append(rows, row)
	}
}

func parseRecord(record []string, columns map[string]int) (*Row, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(record) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return record[idx], nil
	}

	var row Row
	procs, err := field("procs")
	if err != nil {
		return nil, err
	}
	if row.Procs, err = strconv.Atoi(procs); err != nil {
		return nil, err
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"compute_time", &row.ComputeTime},
		{"comm_time", &row.CommTime},
		{"total_time", &row.TotalTime},
	}
	for _, d := range durations {
		s, err := field(d.name)
		if err != nil {
			return nil, err
		}
		secs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		*d.dst = secondsToDuration(secs)
	}

	result, err := field("result")
	if err != nil {
		return nil, err
	}
	if row.Result, err = strconv.ParseFloat(result, 64); err != nil {
		return nil, err
	}
	return &row, nil
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs*float64(time.Second) + 0.5)
}
