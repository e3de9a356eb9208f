package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// BOQListItem is one row of the BOQ register.
type BOQListItem struct {
	ID          string  `json:"id"`
	Division    string  `json:"division"`
	Depot       string  `json:"depot"`
	BusStation  string  `json:"bus_station"`
	BusStand    string  `json:"bus_stand,omitempty"`
	State       string  `json:"state"`
	RaisedBy    string  `json:"raised_by"`
	ApprovedBy  string  `json:"approved_by,omitempty"`
	TotalCost   float64 `json:"total_cost"`
	TotalInWord string  `json:"total_formatted"`
	PriceLive   bool    `json:"price_live"`
	ItemCount   int     `json:"item_count"`
	Created     string  `json:"created"`
}

// HandleBOQList returns the BOQ register, optionally filtered by state and
// division. When no division filter is given and the session has an active
// division, the list is scoped to it.
// Route: GET /api/boqs?state=pending&division=ID
func HandleBOQList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("boqs")
		if err != nil {
			log.Printf("boq_list: could not find boqs collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		query := e.Request.URL.Query()
		state := query.Get("state")
		if state != "" && !services.IsBOQState(state) {
			return APIError(e, http.StatusBadRequest, "invalid_state", "Unknown BOQ state: "+state, nil)
		}

		division := query.Get("division")
		if division == "" {
			if active := GetActiveDivision(e.Request); active != nil {
				division = active.ID
			}
		}

		filter := ""
		params := map[string]any{}
		countExp := dbx.HashExp{}
		if state != "" {
			filter = "state = {:state}"
			params["state"] = state
			countExp["state"] = state
		}
		if division != "" {
			if filter != "" {
				filter += " && "
			}
			filter += "division = {:division}"
			params["division"] = division
			countExp["division"] = division
		}

		page, pageSize := parsePagination(e.Request)
		offset := (page - 1) * pageSize

		records, err := app.FindRecordsByFilter(col, filter, "-created", pageSize, offset, params)
		if err != nil {
			log.Printf("boq_list: could not query boqs: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		countExprs := []dbx.Expression{}
		if len(countExp) > 0 {
			countExprs = append(countExprs, countExp)
		}
		total, err := app.CountRecords(col, countExprs...)
		if err != nil {
			log.Printf("boq_list: could not count boqs: %v", err)
			total = int64(len(records))
		}

		names := newNameCache(app)

		rows := make([]BOQListItem, 0, len(records))
		for _, boq := range records {
			totalCost, itemCount, err := boqComputedTotal(app, boq)
			if err != nil {
				log.Printf("boq_list: could not total BOQ %s: %v", boq.Id, err)
			}

			rows = append(rows, BOQListItem{
				ID:          boq.Id,
				Division:    names.get("divisions", boq.GetString("division")),
				Depot:       names.get("depots", boq.GetString("depot")),
				BusStation:  names.get("bus_stations", boq.GetString("bus_station")),
				BusStand:    names.get("bus_stands", boq.GetString("bus_stand")),
				State:       boq.GetString("state"),
				RaisedBy:    boq.GetString("raised_by"),
				ApprovedBy:  boq.GetString("approved_by"),
				TotalCost:   totalCost,
				TotalInWord: services.FormatINR(totalCost),
				PriceLive:   services.IsPriceLive(boq.GetString("state")),
				ItemCount:   itemCount,
				Created:     boq.GetString("created"),
			})
		}

		return OKList(e, rows, Pagination{Page: page, PageSize: pageSize, Total: int(total)})
	}
}

// boqComputedTotal prices a BOQ's items with the live-or-frozen rule and
// returns the total alongside the item count.
func boqComputedTotal(app *pocketbase.PocketBase, boq *core.Record) (float64, int, error) {
	items, err := app.FindRecordsByFilter("boq_items", "boq = {:boqId}", "sort_order", 0, 0,
		map[string]any{"boqId": boq.Id})
	if err != nil {
		return 0, 0, err
	}

	state := boq.GetString("state")
	forTotals := make([]services.ItemForTotals, 0, len(items))
	for _, item := range items {
		catalogPrice := item.GetFloat("unit_price")
		if services.IsPriceLive(state) {
			if productID := item.GetString("product"); productID != "" {
				if product, err := app.FindRecordById("products", productID); err == nil {
					catalogPrice = product.GetFloat("price")
				}
			}
		}
		forTotals = append(forTotals, services.ItemForTotals{
			Qty:           item.GetFloat("qty"),
			SnapshotPrice: item.GetFloat("unit_price"),
			CatalogPrice:  catalogPrice,
		})
	}

	return services.CalcBOQTotal(state, forTotals), len(items), nil
}

// nameCache memoizes record name lookups across one list response.
type nameCache struct {
	app   *pocketbase.PocketBase
	names map[string]string
}

func newNameCache(app *pocketbase.PocketBase) *nameCache {
	return &nameCache{app: app, names: make(map[string]string)}
}

func (c *nameCache) get(collection, id string) string {
	if id == "" {
		return ""
	}
	key := collection + "/" + id
	if name, ok := c.names[key]; ok {
		return name
	}
	name := ""
	if rec, err := c.app.FindRecordById(collection, id); err == nil {
		name = rec.GetString("name")
	}
	c.names[key] = name
	return name
}
