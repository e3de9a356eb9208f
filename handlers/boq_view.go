package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// BOQItemView is one line of the BOQ detail.
type BOQItemView struct {
	ID           string  `json:"id"`
	ProductName  string  `json:"product_name"`
	ProductGroup string  `json:"product_group"`
	Qty          float64 `json:"qty"`
	UnitPrice    float64 `json:"unit_price"`
	LineTotal    float64 `json:"line_total"`
	SortOrder    int     `json:"sort_order"`
}

// BOQView is the full detail of one BOQ.
type BOQView struct {
	BOQListItem

	Remarks        string               `json:"remarks,omitempty"`
	Items          []BOQItemView        `json:"items"`
	Reconciliation []services.ReconLine `json:"reconciliation"`
}

// HandleBOQView returns a BOQ with its priced line items and the
// requested-vs-installed reconciliation.
// Route: GET /api/boqs/{id}
func HandleBOQView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		items, err := app.FindRecordsByFilter("boq_items", "boq = {:boqId}", "sort_order", 0, 0,
			map[string]any{"boqId": boq.Id})
		if err != nil {
			log.Printf("boq_view: could not load items for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		state := boq.GetString("state")
		priceLive := services.IsPriceLive(state)

		var totalCost float64
		itemViews := make([]BOQItemView, 0, len(items))
		forRecon := make([]services.ItemForRecon, 0, len(items))
		for _, item := range items {
			unitPrice := item.GetFloat("unit_price")
			if priceLive {
				if productID := item.GetString("product"); productID != "" {
					if product, err := app.FindRecordById("products", productID); err == nil {
						unitPrice = product.GetFloat("price")
					}
				}
			}

			qty := item.GetFloat("qty")
			lineTotal := services.LineTotal(qty, unitPrice)
			totalCost += lineTotal

			itemViews = append(itemViews, BOQItemView{
				ID:           item.Id,
				ProductName:  item.GetString("product_name"),
				ProductGroup: item.GetString("product_group"),
				Qty:          qty,
				UnitPrice:    unitPrice,
				LineTotal:    lineTotal,
				SortOrder:    item.GetInt("sort_order"),
			})
			forRecon = append(forRecon, services.ItemForRecon{
				ProductName:  item.GetString("product_name"),
				ProductGroup: item.GetString("product_group"),
				Qty:          qty,
			})
		}

		installed, err := app.FindRecordsByFilter("installed_products", "boq = {:boqId}", "", 0, 0,
			map[string]any{"boqId": boq.Id})
		if err != nil {
			log.Printf("boq_view: could not load installations for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}
		installedRows := make([]services.InstalledRow, 0, len(installed))
		for _, rec := range installed {
			installedRows = append(installedRows, services.InstalledRow{
				ProductName: rec.GetString("product_name"),
				State:       rec.GetString("state"),
			})
		}

		names := newNameCache(app)

		view := BOQView{
			BOQListItem: BOQListItem{
				ID:          boq.Id,
				Division:    names.get("divisions", boq.GetString("division")),
				Depot:       names.get("depots", boq.GetString("depot")),
				BusStation:  names.get("bus_stations", boq.GetString("bus_station")),
				BusStand:    names.get("bus_stands", boq.GetString("bus_stand")),
				State:       state,
				RaisedBy:    boq.GetString("raised_by"),
				ApprovedBy:  boq.GetString("approved_by"),
				TotalCost:   totalCost,
				TotalInWord: services.FormatINR(totalCost),
				PriceLive:   priceLive,
				ItemCount:   len(itemViews),
				Created:     boq.GetString("created"),
			},
			Remarks:        boq.GetString("remarks"),
			Items:          itemViews,
			Reconciliation: services.Reconcile(forRecon, services.CountInstalled(installedRows)),
		}

		return OKData(e, view)
	}
}
