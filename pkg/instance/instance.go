// Package instance reads and writes the textual instance format shared with
// the experiment tooling:
//
//	T
//	N
//	id release deadline processing   (N lines)
//
// A blank line separates instances in a multi-instance file.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/plb/core/model"
)

// ErrMalformed is returned for input that does not follow the format.
var ErrMalformed = errors.New("malformed instance")

// Reader decodes consecutive instances from a stream.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// next returns the next non-blank line.
func (r *Reader) next() (string, error) {
	for r.sc.Scan() {
		r.line++
		if l := strings.TrimSpace(r.sc.Text()); l != "" {
			return l, nil
		}
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *Reader) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformed, r.line, fmt.Sprintf(format, args...))
}

// Next decodes the next instance. It returns io.EOF once the stream holds no
// further instance.
func (r *Reader) Next() (model.Instance, error) {
	var in model.Instance
	line, err := r.next()
	if err != nil {
		return in, err
	}
	period, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return in, r.malformed("period %q", line)
	}
	line, err = r.next()
	if err != nil {
		return in, r.unexpected(err, "job count")
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return in, r.malformed("job count %q", line)
	}
	in.Period = period
	in.Jobs = make([]model.JobSpec, 0, n)
	for i := 0; i < n; i++ {
		line, err = r.next()
		if err != nil {
			return in, r.unexpected(err, fmt.Sprintf("job %d of %d", i+1, n))
		}
		spec, err := parseJob(line)
		if err != nil {
			return in, r.malformed("%v", err)
		}
		in.Jobs = append(in.Jobs, spec)
	}
	return in, nil
}

func (r *Reader) unexpected(err error, what string) error {
	if errors.Is(err, io.EOF) {
		return r.malformed("unexpected end of input, expected %s", what)
	}
	return err
}

func parseJob(line string) (model.JobSpec, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return model.JobSpec{}, fmt.Errorf("job line %q: want 4 fields, got %d", line, len(fields))
	}
	var v [4]int64
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return model.JobSpec{}, fmt.Errorf("job line %q: field %d: %v", line, i+1, err)
		}
		v[i] = n
	}
	return model.JobSpec{ID: model.JobID(v[0]), Release: v[1], Deadline: v[2], Processing: v[3]}, nil
}

// Parse decodes the first instance of r.
func Parse(r io.Reader) (model.Instance, error) {
	in, err := NewReader(r).Next()
	if errors.Is(err, io.EOF) {
		return in, fmt.Errorf("%w: empty input", ErrMalformed)
	}
	return in, err
}

// ParseAll decodes every instance of r.
func ParseAll(r io.Reader) ([]model.Instance, error) {
	rd := NewReader(r)
	var out []model.Instance
	for {
		in, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
}

// Write encodes in followed by a blank separator line.
func Write(w io.Writer, in model.Instance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", in.Period, len(in.Jobs))
	for _, j := range in.Jobs {
		fmt.Fprintf(bw, "%d %d %d %d\n", j.ID, j.Release, j.Deadline, j.Processing)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}
