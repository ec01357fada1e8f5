package runlog

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// linePattern matches the summary lines read by the plotting scripts.
var linePattern = regexp.MustCompile(`T = (-?\d+),N = (\d+) , calibr = (\d+), sec = ([\d.]+)`)

// TextStore appends one summary line per run, preceded by a two line header
// when the file is created. Timestamps are not part of the format, so time
// filters are ignored by Query.
type TextStore struct {
	path string
	mu   sync.Mutex
}

// NewTextStore opens or creates the log at path.
func NewTextStore(path string) (*TextStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		header := fmt.Sprintf("# plb run log\n# created %s\n", time.Now().UTC().Format(time.RFC3339))
		if _, err := f.WriteString(header); err != nil {
			return nil, err
		}
	}
	return &TextStore{path: path}, nil
}

// FormatLine renders rec in the summary line format.
func FormatLine(rec RunRecord) string {
	line := fmt.Sprintf("T = %d,N = %d , calibr = %d, sec = %.6f", rec.Period, rec.Jobs, rec.Calibrations, rec.Seconds)
	if !rec.Feasible {
		line += " , infeasible"
	}
	return line
}

// ParseLine decodes a summary line. ok is false for any other line.
func ParseLine(line string) (RunRecord, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return RunRecord{}, false
	}
	period, _ := strconv.ParseInt(m[1], 10, 64)
	jobs, _ := strconv.Atoi(m[2])
	calib, _ := strconv.Atoi(m[3])
	sec, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return RunRecord{}, false
	}
	return RunRecord{
		Period:       period,
		Jobs:         jobs,
		Calibrations: calib,
		Seconds:      sec,
		Feasible:     !strings.Contains(line, "infeasible"),
	}, true
}

func (s *TextStore) Append(ctx context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintln(f, FormatLine(rec))
	return err
}

func (s *TextStore) Query(ctx context.Context, q LogQuery) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	q.Start, q.End, q.Source = time.Time{}, time.Time{}, ""
	var res []RunRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		r, ok := ParseLine(scanner.Text())
		if ok && q.Match(r) {
			res = append(res, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *TextStore) Close() error { return nil }
