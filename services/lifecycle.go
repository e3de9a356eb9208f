package services

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// BOQ lifecycle states.
const (
	StatePending         = "pending"
	StatePendingPurchase = "pending_purchase"
	StatePendingApproval = "pending_approval"
	StateApproved        = "approved"
	StateCompleted       = "completed"
	StateRejected        = "rejected"
)

// Roles that drive lifecycle transitions.
const (
	RoleCoordinator = "coordinator"
	RoleApprover    = "approver"
)

// BOQStates is the ordered list of valid BOQ states.
var BOQStates = []string{
	StatePending,
	StatePendingPurchase,
	StatePendingApproval,
	StateApproved,
	StateCompleted,
	StateRejected,
}

// IsBOQState reports whether s is a known BOQ state.
func IsBOQState(s string) bool {
	for _, st := range BOQStates {
		if st == s {
			return true
		}
	}
	return false
}

// Transition is one allowed edge in the BOQ lifecycle.
type Transition struct {
	From string
	To   string
	Role string
}

// TransitionTable enumerates every allowed lifecycle edge. Any (from, to)
// pair not listed here is rejected regardless of caller.
var TransitionTable = []Transition{
	{StatePending, StatePendingPurchase, RoleCoordinator},
	{StatePendingPurchase, StatePendingApproval, RoleCoordinator},
	{StatePendingApproval, StateApproved, RoleApprover},
	{StateApproved, StateCompleted, RoleApprover},
	{StatePending, StateRejected, RoleApprover},
	{StatePendingPurchase, StateRejected, RoleApprover},
	{StatePendingApproval, StateRejected, RoleApprover},
}

// CanTransition reports whether the edge from->to is allowed for the role.
func CanTransition(from, to, role string) bool {
	for _, tr := range TransitionTable {
		if tr.From == from && tr.To == to && tr.Role == role {
			return true
		}
	}
	return false
}

// FreezesPrice reports whether moving from->to locks item prices: true when
// the BOQ leaves the live-priced states for anything other than rejection.
func FreezesPrice(from, to string) bool {
	return IsPriceLive(from) && !IsPriceLive(to) && to != StateRejected
}

// TransitionError is returned when a requested lifecycle edge is not in the
// transition table.
type TransitionError struct {
	From string
	To   string
	Role string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s not allowed for role %q", e.From, e.To, e.Role)
}

// ApplyTransition moves a BOQ to a new state. When the edge freezes prices,
// every item's unit_price is snapshotted from the current catalog and the
// BOQ's total_cost is persisted, all inside the same transaction as the
// state change so the snapshot is written exactly once.
func ApplyTransition(app *pocketbase.PocketBase, boq *core.Record, to, actor, role string) error {
	from := boq.GetString("state")

	if !IsBOQState(to) {
		return &TransitionError{From: from, To: to, Role: role}
	}
	if !CanTransition(from, to, role) {
		return &TransitionError{From: from, To: to, Role: role}
	}

	return app.RunInTransaction(func(txApp core.App) error {
		if FreezesPrice(from, to) {
			total, err := freezeItemPrices(txApp, boq.Id)
			if err != nil {
				return fmt.Errorf("freeze item prices: %w", err)
			}
			boq.Set("total_cost", total)
		}

		boq.Set("state", to)
		if to == StateApproved {
			boq.Set("approved_by", actor)
		}

		if err := txApp.Save(boq); err != nil {
			return fmt.Errorf("save boq state: %w", err)
		}
		return nil
	})
}

// freezeItemPrices writes the current catalog price into each item's
// unit_price and returns the resulting BOQ total.
func freezeItemPrices(txApp core.App, boqID string) (float64, error) {
	items, err := txApp.FindRecordsByFilter("boq_items", "boq = {:boqId}", "sort_order", 0, 0,
		map[string]any{"boqId": boqID})
	if err != nil {
		return 0, fmt.Errorf("load items: %w", err)
	}

	var total float64
	for _, item := range items {
		price := item.GetFloat("unit_price")

		productID := item.GetString("product")
		if productID != "" {
			product, err := txApp.FindRecordById("products", productID)
			if err != nil {
				// Catalog entry deleted since the BOQ was raised. Keep
				// whatever was stored so the freeze still completes.
				log.Printf("lifecycle: product %s missing for item %s, keeping stored price", productID, item.Id)
			} else {
				price = product.GetFloat("price")
			}
		}

		item.Set("unit_price", price)
		if err := txApp.Save(item); err != nil {
			return 0, fmt.Errorf("save item %s: %w", item.Id, err)
		}

		total += LineTotal(item.GetFloat("qty"), price)
	}

	return total, nil
}
