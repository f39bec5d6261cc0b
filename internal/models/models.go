package models

// SpreadsheetRef identifies a registered spreadsheet. Identity is the ID.
type SpreadsheetRef struct {
	ID    string `json:"spreadsheetId"`
	Title string `json:"title"`
}

// Row is one raw line of a sheet, tagged with its spreadsheet and 0-based position.
type Row struct {
	SpreadsheetID string `json:"spreadsheetId"`
	RowIndex      int    `json:"rowIndex"`
	Cells         []Cell `json:"cells"`
}

// Card is a typed flashcard derived from a Row through the sheet's header.
type Card struct {
	Section int    `json:"section"`
	Num     int    `json:"num"`
	Source  string `json:"sourceText"`
	Target  string `json:"targetText"`
	Grammar string `json:"grammar"`
	Note    string `json:"note"`
}
