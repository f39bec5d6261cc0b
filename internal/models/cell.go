package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellKind tells which variant of a Cell is populated.
type CellKind int

const (
	CellAbsent CellKind = iota
	CellText
	CellNumber
)

// Cell is one raw spreadsheet value: text, number, or nothing at all.
// Its JSON form is a string, a number or null.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Number: n} }

// AbsentCell is the zero Cell.
func AbsentCell() Cell { return Cell{} }

// IsEmpty reports whether the cell is absent or holds the empty string.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellAbsent || (c.Kind == CellText && c.Text == "")
}

// String converts the cell to text. Absent cells yield "".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// Int converts the cell to an integer. Anything that does not read as a
// finite number yields 0; fractions truncate toward zero.
func (c Cell) Int() int {
	var n float64
	switch c.Kind {
	case CellNumber:
		n = c.Number
	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int(n)
}

func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(c.Number)
	default:
		return []byte("null"), nil
	}
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Cell{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextCell(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		// Sheets renders booleans as TRUE/FALSE.
		*c = TextCell(strings.ToUpper(strconv.FormatBool(b)))
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("cell: unsupported value %s", data)
		}
		*c = NumberCell(n)
	}
	return nil
}

// CellAt returns cells[i], or an absent cell when i is out of range.
func CellAt(cells []Cell, i int) Cell {
	if i < 0 || i >= len(cells) {
		return Cell{}
	}
	return cells[i]
}
