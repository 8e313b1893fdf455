package model

// RowError is one failed cell rule. Row is the worksheet row number, so the first
// data row is 2.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of the data pass over every row.
type ValidationResult struct {
	Valid          bool       `json:"valid"`
	Errors         []RowError `json:"errors"`
	TotalRows      int        `json:"total_rows"`
	RowsWithErrors int        `json:"rows_with_errors"`
}

// StructureResult is the outcome of the sheet and header checks.
type StructureResult struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
