package training

import "github.com/vytor/sentenceflash/internal/models"

// Columns names the header cells that feed each Card field.
type Columns struct {
	Section string
	Num     string
	Source  string
	Target  string
	Grammar string
	// Note lists accepted header names in order of preference.
	Note []string
}

func DefaultColumns() Columns {
	return Columns{
		Section: "section",
		Num:     "#",
		Source:  "日本語",
		Target:  "英語",
		Grammar: "構文",
		Note:    []string{"解説", "備考"},
	}
}

// header maps header names to column indexes. A name that appears more than
// once resolves to its last column.
type header map[string]int

func newHeader(cells []models.Cell) header {
	h := make(header, len(cells))
	for i, c := range cells {
		if c.IsEmpty() {
			continue
		}
		h[c.String()] = i
	}
	return h
}

func (h header) cell(cells []models.Cell, names ...string) models.Cell {
	for _, name := range names {
		if i, ok := h[name]; ok {
			return models.CellAt(cells, i)
		}
	}
	return models.AbsentCell()
}

// BuildCards turns rows into cards. The first row is the header; every other
// row becomes one card. Missing columns yield "" or 0.
func BuildCards(rows []models.Row, cols Columns) []models.Card {
	if len(rows) == 0 {
		return []models.Card{}
	}

	h := newHeader(rows[0].Cells)
	cards := make([]models.Card, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cards = append(cards, models.Card{
			Section: h.cell(row.Cells, cols.Section).Int(),
			Num:     h.cell(row.Cells, cols.Num).Int(),
			Source:  h.cell(row.Cells, cols.Source).String(),
			Target:  h.cell(row.Cells, cols.Target).String(),
			Grammar: h.cell(row.Cells, cols.Grammar).String(),
			Note:    h.cell(row.Cells, cols.Note...).String(),
		})
	}
	return cards
}
