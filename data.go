package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// dataset is a CSV file split into inputs and an optional target column.
type dataset struct {
	X         *mat.Dense // variables × samples
	Y         []float64
	Variables []string
	HasTarget bool
}

func loadCSV(path, target string, variables []string) (*dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := readCSV(bufio.NewReaderSize(f, 1<<20), target, variables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// readCSV reads a headed CSV. Without explicit variables every column other
// than target is an input.
func readCSV(r io.Reader, target string, variables []string) (*dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := col[h]; dup {
			return nil, fmt.Errorf("duplicate column %q", h)
		}
		col[h] = i
	}

	targetCol, hasTarget := col[target]
	if len(variables) == 0 {
		for _, h := range header {
			h = strings.TrimSpace(h)
			if !hasTarget || h != target {
				variables = append(variables, h)
			}
		}
	}
	if len(variables) == 0 {
		return nil, fmt.Errorf("no input columns")
	}
	varCols := make([]int, len(variables))
	for i, v := range variables {
		c, ok := col[v]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", v)
		}
		varCols[i] = c
	}

	var rows [][]float64
	var y []float64
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(varCols))
		for i, c := range varCols {
			if row[i], err = parseCell(rec[c]); err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, variables[i], err)
			}
		}
		rows = append(rows, row)
		if hasTarget {
			v, err := parseCell(rec[targetCol])
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, target, err)
			}
			y = append(y, v)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no samples")
	}

	X := mat.NewDense(len(variables), len(rows), nil)
	for j, row := range rows {
		X.SetCol(j, row)
	}
	return &dataset{X: X, Y: y, Variables: variables, HasTarget: hasTarget}, nil
}

func parseCell(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
