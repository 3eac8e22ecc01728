package main

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/termcluster/engine"
)

// readRows parses "group,term,weight" records. Empty term or weight fields
// are null.
func readRows(r io.Reader) ([]engine.Row, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3

	var rows []engine.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("rows: %w", err)
		}

		row := engine.Row{Group: rec[0]}
		if rec[1] != "" {
			row.Term = sql.NullString{String: rec[1], Valid: true}
		}
		if rec[2] != "" {
			w, err := strconv.ParseFloat(rec[2], 64)
			if err != nil {
				line, _ := cr.FieldPos(2)
				return nil, fmt.Errorf("rows: line %d: invalid weight %q", line, rec[2])
			}
			row.Weight = sql.NullFloat64{Float64: w, Valid: true}
		}
		rows = append(rows, row)
	}
}

// writeAssignments prints "group,cluster" lines in group order.
func writeAssignments(w io.Writer, groups []string, assignments map[string]int) error {
	cw := csv.NewWriter(w)
	for _, g := range groups {
		if err := cw.Write([]string{g, strconv.Itoa(assignments[g])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
