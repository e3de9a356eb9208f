// Package services provides pricing, lifecycle, reconciliation and import
// logic for bus-station CCTV BOQs.
package services

// IsPriceLive reports whether a BOQ in the given state still tracks the live
// catalog price. Once a BOQ moves past the purchase-negotiation states its
// item prices are frozen.
func IsPriceLive(state string) bool {
	return state == StatePending || state == StatePendingPurchase
}

// UnitPrice returns the displayed unit price for a line item: the current
// catalog price while the BOQ is still negotiable, the frozen snapshot
// afterwards.
func UnitPrice(state string, snapshotPrice, catalogPrice float64) float64 {
	if IsPriceLive(state) {
		return catalogPrice
	}
	return snapshotPrice
}

// LineTotal is the extended price of a single BOQ line.
func LineTotal(qty float64, unitPrice float64) float64 {
	return qty * unitPrice
}

// ItemForTotals carries the fields needed to price one BOQ line.
type ItemForTotals struct {
	Qty           float64
	SnapshotPrice float64
	CatalogPrice  float64
}

// CalcBOQTotal sums line totals over all items of a BOQ, applying the
// live-or-frozen price rule for the given state.
func CalcBOQTotal(state string, items []ItemForTotals) float64 {
	var total float64
	for _, item := range items {
		total += LineTotal(item.Qty, UnitPrice(state, item.SnapshotPrice, item.CatalogPrice))
	}
	return total
}
