package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// HandleBOQExport renders a BOQ as a PDF download. The document prices lines
// with the same live-or-frozen rule as the detail view.
// Route: GET /api/boqs/{id}/export
func HandleBOQExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		boq, err := app.FindRecordById("boqs", e.Request.PathValue("id"))
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "BOQ not found", nil)
		}

		data, err := buildExportData(app, boq)
		if err != nil {
			log.Printf("boq_export: could not assemble export for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		pdf, err := services.GeneratePDF(data)
		if err != nil {
			log.Printf("boq_export: could not render PDF for BOQ %s: %v", boq.Id, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		fileName := exportFileName(data.SiteName, boq.Id)
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(pdf)
		return err
	}
}

// buildExportData collects one BOQ into the flat structure the PDF renderer
// consumes.
func buildExportData(app *pocketbase.PocketBase, boq *core.Record) (services.ExportData, error) {
	items, err := app.FindRecordsByFilter("boq_items", "boq = {:boqId}", "sort_order", 0, 0,
		map[string]any{"boqId": boq.Id})
	if err != nil {
		return services.ExportData{}, fmt.Errorf("load items: %w", err)
	}

	state := boq.GetString("state")
	priceLive := services.IsPriceLive(state)

	var total float64
	rows := make([]services.ExportRow, 0, len(items))
	for i, item := range items {
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
		total += lineTotal

		rows = append(rows, services.ExportRow{
			Index:        fmt.Sprintf("%d", i+1),
			ProductName:  item.GetString("product_name"),
			ProductGroup: item.GetString("product_group"),
			Qty:          qty,
			UnitPrice:    unitPrice,
			LineTotal:    lineTotal,
		})
	}

	names := newNameCache(app)
	siteParts := []string{
		names.get("divisions", boq.GetString("division")),
		names.get("depots", boq.GetString("depot")),
		names.get("bus_stations", boq.GetString("bus_station")),
	}
	if stand := names.get("bus_stands", boq.GetString("bus_stand")); stand != "" {
		siteParts = append(siteParts, stand)
	}

	priceMode := "frozen"
	if priceLive {
		priceMode = "live"
	}

	created := boq.GetString("created")
	if len(created) > 10 {
		created = created[:10]
	}

	return services.ExportData{
		SiteName:    strings.Join(siteParts, " / "),
		State:       state,
		RaisedBy:    boq.GetString("raised_by"),
		ApprovedBy:  boq.GetString("approved_by"),
		CreatedDate: created,
		PriceMode:   priceMode,
		Rows:        rows,
		TotalCost:   total,
	}, nil
}

// exportFileName builds a filesystem-safe download name from the site name.
func exportFileName(siteName, boqID string) string {
	name := strings.ToLower(siteName)
	name = strings.ReplaceAll(name, " / ", "-")
	name = strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		cleaned = "boq"
	}
	return fmt.Sprintf("boq-%s-%s.pdf", cleaned, boqID)
}
