package resultlog

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogCreatesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	log := NewLog(dir)

	row := &Row{
		Procs:       1,
		ComputeTime: 1500 * time.Millisecond,
		CommTime:    2 * time.Microsecond,
		TotalTime:   1502 * time.Millisecond,
		Result:      19.306000526,
	}
	if err := log.Append(row); err != nil {
		t.Fatal(err)
	}
	expected := "procs,compute_time,comm_time,total_time,result\n" +
		"1,1.500000,0.000002,1.502000,19.306001\n"
	if actual := readFile(t, log.Path); actual != expected {
		t.Fatalf("expected %q but got %q", expected, actual)
	}

	row.Procs = 4
	if err := log.Append(row); err != nil {
		t.Fatal(err)
	}
	expected += "4,1.500000,0.000002,1.502000,19.306001\n"
	if actual := readFile(t, log.Path); actual != expected {
		t.Fatalf("expected %q but got %q", expected, actual)
	}
}

func TestLogLocked(t *testing.T) {
	log := NewLog(t.TempDir())
	log.Lock = true
	for i := 1; i <= 3; i++ {
		if err := log.Append(&Row{Procs: i}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := log.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows but got %d", len(rows))
	}
	if strings.Count(readFile(t, log.Path), "procs") != 1 {
		t.Error("header should appear exactly once")
	}
}

func TestLogRoundTrip(t *testing.T) {
	log := NewLog(t.TempDir())
	written := []*Row{
		{
			Procs:       1,
			ComputeTime: 12345678 * time.Microsecond,
			CommTime:    3 * time.Microsecond,
			TotalTime:   12345700 * time.Microsecond,
			Result:      21081692.7462,
		},
		{
			Procs:       8,
			ComputeTime: 1543210 * time.Microsecond,
			CommTime:    250 * time.Microsecond,
			TotalTime:   1543600 * time.Microsecond,
			Result:      21081692.746201,
		},
	}
	for _, row := range written {
		if err := log.Append(row); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := log.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(written) {
		t.Fatalf("expected %d rows but got %d", len(written), len(rows))
	}
	for i, actual := range rows {
		expected := written[i]
		if actual.Procs != expected.Procs {
			t.Errorf("row %d: procs %d != %d", i, actual.Procs, expected.Procs)
		}
		if actual.ComputeTime != expected.ComputeTime || actual.CommTime != expected.CommTime ||
			actual.TotalTime != expected.TotalTime {
			t.Errorf("row %d: times %v != %v", i, actual, expected)
		}
		if math.Abs(actual.Result-expected.Result) > 5e-7 {
			t.Errorf("row %d: result %f != %f", i, actual.Result, expected.Result)
		}
	}
}

func TestReadAllMissing(t *testing.T) {
	log := NewLog(filepath.Join(t.TempDir(), "nothing"))
	if _, err := log.ReadAll(); !errors.Is(err, ErrMissingLog) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadRowsColumnOrder(t *testing.T) {
	data := "result,procs,total_time,comm_time,compute_time\n" +
		"3.5,2,5.000000,0.100000,4.900000\n"
	rows, err := ReadRows(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row but got %d", len(rows))
	}
	row := rows[0]
	if row.Procs != 2 || row.Result != 3.5 || row.TotalTime != 5*time.Second ||
		row.CommTime != 100*time.Millisecond || row.ComputeTime != 4900*time.Millisecond {
		t.Errorf("unexpected row: %+v", row)
	}
}

func TestReadRowsErrors(t *testing.T) {
	inputs := []string{
		"procs,compute_time,comm_time,total_time\n1,0,0,0\n",
		"procs,compute_time,comm_time,total_time,result\nx,0,0,0,0\n",
		"procs,compute_time,comm_time,total_time,result\n1,0,0,zero,0\n",
		"procs,compute_time,comm_time,total_time,result\n1,0,0\n",
	}
	for _, input := range inputs {
		if _, err := ReadRows(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}

func TestReadRowsEmpty(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows but got %d", len(rows))
	}
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
