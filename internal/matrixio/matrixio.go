// Package matrixio reads sample matrices from CSV and writes filtered
// matrices as CSV or JSON for the bahc command.
package matrixio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrEmpty is returned by ReadCSV when the input holds no data rows.
var ErrEmpty = errors.New("matrixio: no data rows")

// ReadCSV parses one series per record into an N×T matrix. Lines starting
// with '#' are skipped and fields are trimmed. All records must have the
// same number of fields.
func ReadCSV(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("matrixio: %w", err)
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("matrixio: row %d column %d: %w", len(rows)+1, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	t := len(rows[0])
	data := make([]float64, 0, len(rows)*t)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), t, data), nil
}

// WriteCSV writes m one row per line with full float64 precision.
func WriteCSV(w io.Writer, m mat.Matrix) error {
	cw := csv.NewWriter(w)
	r, c := m.Dims()
	rec := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			rec[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("matrixio: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("matrixio: %w", err)
	}
	return nil
}

// Filtered is one filtered matrix tagged with its order.
type Filtered struct {
	Order  int
	Matrix mat.Matrix
}

// Report is the JSON document written by WriteJSON.
type Report struct {
	Kind       string          `json:"kind"`
	Bootstraps int             `json:"bootstraps"`
	Requested  int             `json:"requested"`
	Partial    bool            `json:"partial"`
	Matrices   []ReportMatrix `json:"matrices"`
}

// ReportMatrix is a filtered matrix in nested-array form.
type ReportMatrix struct {
	Order  int         `json:"order"`
	Values [][]float64 `json:"values"`
}

// NewReport builds a Report from filtered matrices.
func NewReport(kind string, bootstraps, requested int, partial bool, ms []Filtered) Report {
	rep := Report{
		Kind:       kind,
		Bootstraps: bootstraps,
		Requested:  requested,
		Partial:    partial,
		Matrices:   make([]ReportMatrix, len(ms)),
	}
	for k, f := range ms {
		r, c := f.Matrix.Dims()
		values := make([][]float64, r)
		for i := range values {
			values[i] = make([]float64, c)
			for j := range values[i] {
				values[i][j] = f.Matrix.At(i, j)
			}
		}
		rep.Matrices[k] = ReportMatrix{Order: f.Order, Values: values}
	}
	return rep
}

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("matrixio: %w", err)
	}
	return nil
}
