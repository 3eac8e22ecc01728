package source

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/termcluster/centroid"
)

// Parse reads CSV records from r into b. Lines starting with '#' and blank
// lines are ignored. It returns the number of records added.
func Parse(r io.Reader, b *centroid.Builder) (int, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.ReuseRecord = true

	records := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return records, &ParseError{Line: pe.Line, Reason: pe.Err.Error(), cause: err}
			}
			return records, err
		}
		line, _ := cr.FieldPos(0)

		cluster, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return records, &ParseError{Line: line, Reason: "cluster " + strconv.Quote(rec[0]) + " is not an integer", cause: err}
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return records, &ParseError{Line: line, Reason: "weight " + strconv.Quote(rec[2]) + " is not a number", cause: err}
		}
		if err := b.Add(cluster, rec[1], weight); err != nil {
			return records, &ParseError{Line: line, Reason: err.Error(), cause: err}
		}
		records++
	}
}
