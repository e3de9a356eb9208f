package services

// InstalledRow is the slice of an installed-product record that
// reconciliation cares about.
type InstalledRow struct {
	ProductName string
	State       string
}

// CountInstalled groups installed-product rows by product name. Faulty and
// replaced units still count toward the quota: a replacement is logged as its
// own row against the same product name, matching how field technicians
// record swaps.
func CountInstalled(rows []InstalledRow) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ProductName]++
	}
	return counts
}

// FullyInstalled reports whether the installed count satisfies the requested
// quantity for a line.
func FullyInstalled(installed int, qty float64) bool {
	return float64(installed) >= qty
}

// ReconLine is one row of the requested-vs-installed comparison for a BOQ.
type ReconLine struct {
	ProductName    string  `json:"product_name"`
	ProductGroup   string  `json:"product_group"`
	Requested      float64 `json:"requested"`
	Installed      int     `json:"installed"`
	FullyInstalled bool    `json:"fully_installed"`
}

// ItemForRecon carries the fields needed to reconcile one BOQ line.
type ItemForRecon struct {
	ProductName  string
	ProductGroup string
	Qty          float64
}

// Reconcile compares each BOQ line against the installed counts. It is a
// pure function of its inputs: calling it twice with the same rows yields
// identical results.
func Reconcile(items []ItemForRecon, counts map[string]int) []ReconLine {
	lines := make([]ReconLine, 0, len(items))
	for _, item := range items {
		installed := counts[item.ProductName]
		lines = append(lines, ReconLine{
			ProductName:    item.ProductName,
			ProductGroup:   item.ProductGroup,
			Requested:      item.Qty,
			Installed:      installed,
			FullyInstalled: FullyInstalled(installed, item.Qty),
		})
	}
	return lines
}
