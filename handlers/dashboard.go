package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// DashboardSummary aggregates the rollout at a glance: BOQ counts per
// lifecycle state, the money split between live and frozen valuations, and
// installation progress against approved quantities.
type DashboardSummary struct {
	StateCounts       map[string]int    `json:"state_counts"`
	TotalBOQs         int               `json:"total_boqs"`
	PendingValue      float64           `json:"pending_value"`
	PendingFormatted  string            `json:"pending_formatted"`
	ApprovedValue     float64           `json:"approved_value"`
	ApprovedFormatted string            `json:"approved_formatted"`
	RequestedUnits    float64           `json:"requested_units"`
	InstalledUnits    int               `json:"installed_units"`
	Divisions         []DivisionSummary `json:"divisions"`
	ActiveDivision    *ActiveDivision   `json:"active_division,omitempty"`
}

// DivisionSummary is the per-division rollup row.
type DivisionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BOQs      int    `json:"boqs"`
	Approved  int    `json:"approved"`
	Completed int    `json:"completed"`
}

// HandleDashboard returns the rollout summary. When the session has an
// active division the counts and values are scoped to it and the
// per-division rollup collapses to that division.
// Route: GET /api/dashboard
func HandleDashboard(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boqsCol, err := app.FindCollectionByNameOrId("boqs")
		if err != nil {
			log.Printf("dashboard: could not find boqs collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		active := GetActiveDivision(e.Request)

		summary := DashboardSummary{
			StateCounts:    make(map[string]int, len(services.BOQStates)),
			ActiveDivision: active,
		}

		for _, state := range services.BOQStates {
			exp := dbx.HashExp{"state": state}
			if active != nil {
				exp["division"] = active.ID
			}
			count, err := app.CountRecords(boqsCol, exp)
			if err != nil {
				log.Printf("dashboard: could not count state %s: %v", state, err)
				continue
			}
			summary.StateCounts[state] = int(count)
			summary.TotalBOQs += int(count)
		}

		filter := ""
		params := map[string]any{}
		if active != nil {
			filter = "division = {:division}"
			params["division"] = active.ID
		}
		boqs, err := app.FindRecordsByFilter(boqsCol, filter, "", 0, 0, params)
		if err != nil {
			log.Printf("dashboard: could not load boqs: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		approvedQty := make(map[string]bool)
		for _, boq := range boqs {
			state := boq.GetString("state")
			switch {
			case services.IsPriceLive(state) || state == services.StatePendingApproval:
				total, _, err := boqComputedTotal(app, boq)
				if err != nil {
					log.Printf("dashboard: could not total BOQ %s: %v", boq.Id, err)
					continue
				}
				summary.PendingValue += total
			case state == services.StateApproved || state == services.StateCompleted:
				summary.ApprovedValue += boq.GetFloat("total_cost")
				approvedQty[boq.Id] = true
			}
		}

		// Installation progress counts units against approved/completed BOQs.
		for boqID := range approvedQty {
			items, err := app.FindRecordsByFilter("boq_items", "boq = {:boqId}", "", 0, 0,
				map[string]any{"boqId": boqID})
			if err != nil {
				log.Printf("dashboard: could not load items for BOQ %s: %v", boqID, err)
				continue
			}
			for _, item := range items {
				summary.RequestedUnits += item.GetFloat("qty")
			}

			installedCol, err := app.FindCollectionByNameOrId("installed_products")
			if err != nil {
				continue
			}
			count, err := app.CountRecords(installedCol, dbx.HashExp{"boq": boqID})
			if err != nil {
				log.Printf("dashboard: could not count installations for BOQ %s: %v", boqID, err)
				continue
			}
			summary.InstalledUnits += int(count)
		}

		summary.PendingFormatted = services.FormatINR(summary.PendingValue)
		summary.ApprovedFormatted = services.FormatINR(summary.ApprovedValue)

		divisions, err := divisionRollup(app, active)
		if err != nil {
			log.Printf("dashboard: could not build division rollup: %v", err)
		}
		summary.Divisions = divisions

		return OKData(e, summary)
	}
}

// divisionRollup counts BOQs per division, restricted to the active division
// when one is set.
func divisionRollup(app *pocketbase.PocketBase, active *ActiveDivision) ([]DivisionSummary, error) {
	divCol, err := app.FindCollectionByNameOrId("divisions")
	if err != nil {
		return nil, err
	}
	boqsCol, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		return nil, err
	}

	var divisions []*core.Record
	if active != nil {
		rec, err := app.FindRecordById("divisions", active.ID)
		if err != nil {
			return nil, err
		}
		divisions = []*core.Record{rec}
	} else {
		divisions, err = app.FindAllRecords(divCol)
		if err != nil {
			return nil, err
		}
	}

	rollup := make([]DivisionSummary, 0, len(divisions))
	for _, div := range divisions {
		total, err := app.CountRecords(boqsCol, dbx.HashExp{"division": div.Id})
		if err != nil {
			return nil, err
		}
		approved, err := app.CountRecords(boqsCol, dbx.HashExp{"division": div.Id, "state": services.StateApproved})
		if err != nil {
			return nil, err
		}
		completed, err := app.CountRecords(boqsCol, dbx.HashExp{"division": div.Id, "state": services.StateCompleted})
		if err != nil {
			return nil, err
		}
		rollup = append(rollup, DivisionSummary{
			ID:        div.Id,
			Name:      div.GetString("name"),
			BOQs:      int(total),
			Approved:  int(approved),
			Completed: int(completed),
		})
	}
	return rollup, nil
}
