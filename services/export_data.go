package services

// ExportRow represents a single priced line in the BOQ export.
type ExportRow struct {
	Index        string
	ProductName  string
	ProductGroup string
	Qty          float64
	UnitPrice    float64
	LineTotal    float64
}

// ExportData holds all data needed to render a BOQ document.
type ExportData struct {
	SiteName    string // "Division / Depot / Station / Stand"
	State       string
	RaisedBy    string
	ApprovedBy  string
	CreatedDate string
	PriceMode   string // "live" or "frozen"
	Rows        []ExportRow
	TotalCost   float64
}
