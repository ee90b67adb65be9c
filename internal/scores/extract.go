// Package scores reconstructs structured candidate records from a
// loosely-structured, human-edited spreadsheet grid. Section boundaries are
// inferred from cell content rather than a fixed schema.
package scores

import (
	"math"
	"strconv"
	"strings"
)

// Markers recognized in cell text after trimming and upper-casing.
const (
	headerToken = "CANDIDATE"
	judgePrefix = "JUDGE"
)

// rowKind classifies a grid row for the block parser.
type rowKind int

const (
	rowInert rowKind = iota
	rowHeader
	rowJudge
)

// parserState is the state of the block parser.
type parserState int

const (
	// stateScanning means no block is open; judge rows are ignored.
	stateScanning parserState = iota
	// stateBlockOpen means a header has opened candidate slots and judge
	// rows feed scores into them.
	stateBlockOpen
)

// slot is an in-progress candidate opened by a header cell. Slots are keyed
// by column so judge rows know which cell belongs to which candidate.
type slot struct {
	column int
	name   string
	scores []float64
}

// Extract parses a row-major grid of cell strings into an ordered list of
// candidate records. Sparse cells are treated as empty strings. The pass is
// pure and deterministic: an empty grid yields an empty list, never an error.
//
// Candidates are emitted in the left-to-right column order of their header
// row; blocks are emitted top-to-bottom. Non-numeric or missing score cells
// are skipped and do not count toward the mean's denominator.
func Extract(grid [][]string) []CandidateRecord {
	records := make([]CandidateRecord, 0)

	st := stateScanning
	var open []slot
	category := DefaultCategory

	for i, row := range grid {
		switch classifyRow(row) {
		case rowHeader:
			if st == stateBlockOpen {
				records = appendFinalized(records, open, category)
			}
			open = openSlots(row)
			category = resolveCategory(grid, i)
			st = stateBlockOpen

		case rowJudge:
			// A judge row before any header has no slots to feed.
			if st != stateBlockOpen {
				continue
			}
			for j := range open {
				s := &open[j]
				// The judge label occupies the first cell, so a slot's
				// score sits one column to the right of its header cell.
				col := s.column + 1
				if col >= len(row) {
					continue
				}
				if v, ok := parseScore(row[col]); ok {
					s.scores = append(s.scores, v)
				}
			}

		case rowInert:
			// Inert rows only matter as category-resolution input.
		}
	}

	if st == stateBlockOpen {
		records = appendFinalized(records, open, category)
	}
	return records
}

// classifyRow decides whether a row is a header, a judge row, or inert.
// Header detection wins when a row could match both.
func classifyRow(row []string) rowKind {
	for _, cell := range row {
		if strings.Contains(normalize(cell), headerToken) {
			return rowHeader
		}
	}
	if len(row) > 0 && strings.HasPrefix(normalize(row[0]), judgePrefix) {
		return rowJudge
	}
	return rowInert
}

// openSlots creates one in-progress slot per CANDIDATE cell in a header row,
// in column order.
func openSlots(row []string) []slot {
	var slots []slot
	for col, cell := range row {
		if strings.Contains(normalize(cell), headerToken) {
			slots = append(slots, slot{column: col, name: strings.TrimSpace(cell)})
		}
	}
	return slots
}

// resolveCategory scans strictly above the header row for the nearest row
// whose first cell is non-empty and is not a judge marker. Its trimmed text
// labels the block; with no such row the block falls back to DefaultCategory.
func resolveCategory(grid [][]string, headerRow int) string {
	for i := headerRow - 1; i >= 0; i-- {
		row := grid[i]
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])
		if first == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(first), judgePrefix) {
			continue
		}
		return first
	}
	return DefaultCategory
}

// appendFinalized converts open slots into records, in the order the slots
// were opened. A slot with no collected scores still produces a record with
// aggregate 0.
func appendFinalized(records []CandidateRecord, open []slot, category string) []CandidateRecord {
	for _, s := range open {
		collected := s.scores
		if collected == nil {
			// Keep scoreless candidates and marshal their scores as [].
			collected = []float64{}
		}
		records = append(records, CandidateRecord{
			Name:      s.name,
			Category:  category,
			Scores:    collected,
			Aggregate: Mean(collected),
		})
	}
	return records
}

// parseScore parses a cell as a finite score value.
func parseScore(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func normalize(cell string) string {
	return strings.ToUpper(strings.TrimSpace(cell))
}
