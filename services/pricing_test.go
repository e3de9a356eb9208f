package services

import (
	"math"
	"testing"
)

func TestIsPriceLive(t *testing.T) {
	tests := []struct {
		state  string
		expect bool
	}{
		{StatePending, true},
		{StatePendingPurchase, true},
		{StatePendingApproval, false},
		{StateApproved, false},
		{StateCompleted, false},
		{StateRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			if got := IsPriceLive(tt.state); got != tt.expect {
				t.Errorf("IsPriceLive(%q) = %v, want %v", tt.state, got, tt.expect)
			}
		})
	}
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		state    string
		snapshot float64
		catalog  float64
		expect   float64
	}{
		{"pending uses catalog", StatePending, 0, 450, 450},
		{"pending purchase uses catalog", StatePendingPurchase, 0, 450, 450},
		{"pending approval uses snapshot", StatePendingApproval, 400, 450, 400},
		{"approved uses snapshot", StateApproved, 400, 999, 400},
		{"completed uses snapshot", StateCompleted, 400, 999, 400},
		{"catalog change invisible after freeze", StateApproved, 500, 750, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPrice(tt.state, tt.snapshot, tt.catalog)
			if got != tt.expect {
				t.Errorf("UnitPrice(%q, %v, %v) = %v, want %v",
					tt.state, tt.snapshot, tt.catalog, got, tt.expect)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		qty       float64
		unitPrice float64
		expect    float64
	}{
		{"basic", 3, 500, 1500},
		{"zero qty", 0, 500, 0},
		{"zero price", 10, 0, 0},
		{"decimal price", 2, 99.50, 199},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LineTotal(tt.qty, tt.unitPrice); got != tt.expect {
				t.Errorf("LineTotal(%v, %v) = %v, want %v", tt.qty, tt.unitPrice, got, tt.expect)
			}
		})
	}
}

func TestCalcBOQTotal(t *testing.T) {
	tests := []struct {
		name   string
		state  string
		items  []ItemForTotals
		expect float64
	}{
		{
			name:  "live pricing sums catalog",
			state: StatePending,
			items: []ItemForTotals{
				{Qty: 3, SnapshotPrice: 0, CatalogPrice: 500},
				{Qty: 10, SnapshotPrice: 0, CatalogPrice: 20},
			},
			expect: 1700,
		},
		{
			name:  "frozen pricing sums snapshots",
			state: StateApproved,
			items: []ItemForTotals{
				{Qty: 3, SnapshotPrice: 500, CatalogPrice: 9999},
				{Qty: 10, SnapshotPrice: 20, CatalogPrice: 9999},
			},
			expect: 1700,
		},
		{
			name:   "empty items",
			state:  StatePending,
			items:  nil,
			expect: 0,
		},
		{
			name:  "catalog edit moves live total",
			state: StatePendingPurchase,
			items: []ItemForTotals{
				{Qty: 4, SnapshotPrice: 0, CatalogPrice: 275},
			},
			expect: 1100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcBOQTotal(tt.state, tt.items)
			if math.Abs(got-tt.expect) > 0.001 {
				t.Errorf("CalcBOQTotal(%q, ...) = %v, want %v", tt.state, got, tt.expect)
			}
		})
	}
}

// A frozen BOQ's total must not move when the catalog does, while a live one
// tracks it.
func TestCatalogEditOnlyMovesLiveTotals(t *testing.T) {
	items := []ItemForTotals{{Qty: 3, SnapshotPrice: 500, CatalogPrice: 500}}

	liveBefore := CalcBOQTotal(StatePending, items)
	frozenBefore := CalcBOQTotal(StateApproved, items)

	items[0].CatalogPrice = 800

	if got := CalcBOQTotal(StatePending, items); got == liveBefore {
		t.Errorf("live total did not track catalog edit, still %v", got)
	}
	if got := CalcBOQTotal(StateApproved, items); got != frozenBefore {
		t.Errorf("frozen total moved with catalog edit: %v, want %v", got, frozenBefore)
	}
}
