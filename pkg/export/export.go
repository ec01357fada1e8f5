// Package export renders schedules for the reporting and plotting tools.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/plb/core/model"
	"github.com/kilianp07/plb/core/report"
)

// WriteText writes the human readable block consumed by the log parsers.
// Jobs that never ran are skipped.
func WriteText(w io.Writer, s *report.Schedule) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "--- FINAL SCHEDULING OUTPUT ---")
	fmt.Fprintf(bw, "Calibration times: %s\n", formatTimes(s.Calibrations))
	for _, id := range s.JobIDs() {
		ivs := s.Intervals[id]
		if len(ivs) == 0 {
			continue
		}
		fmt.Fprintf(bw, "Job %d executed in intervals:\n", id)
		for _, iv := range ivs {
			fmt.Fprintf(bw, "   [%d, %d) => duration %d\n", iv.Start, iv.End, iv.Len())
		}
	}
	return bw.Flush()
}

func formatTimes(ts []model.Time) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = strconv.FormatInt(t, 10)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s *report.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one row per execution interval, ordered by job id then start.
func WriteCSV(w io.Writer, s *report.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"job_id", "start", "end", "duration"}); err != nil {
		return err
	}
	for _, id := range s.JobIDs() {
		for _, iv := range s.Intervals[id] {
			rec := []string{
				strconv.Itoa(int(id)),
				strconv.FormatInt(iv.Start, 10),
				strconv.FormatInt(iv.End, 10),
				strconv.FormatInt(iv.Len(), 10),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format: "text", "json" or "csv".
func Write(w io.Writer, s *report.Schedule, format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		return WriteText(w, s)
	case "json":
		return WriteJSON(w, s)
	case "csv":
		return WriteCSV(w, s)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
