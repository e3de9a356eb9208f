package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// RefItem is one entry of a reference-data dropdown.
type RefItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// ProductItem is one catalog entry.
type ProductItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Group string  `json:"group"`
	Price float64 `json:"price"`
}

// parsePagination reads page/pageSize query params, clamping to MaxPageSize.
func parsePagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// HandleDivisionList returns all divisions.
// Route: GET /api/ref/divisions
func HandleDivisionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return listRefCollection(app, e, "divisions", "", "")
	}
}

// HandleDepotList returns the depots of one division.
// Route: GET /api/ref/depots?division=ID
func HandleDepotList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return listRefCollection(app, e, "depots", "division", e.Request.URL.Query().Get("division"))
	}
}

// HandleBusStationList returns the bus stations of one depot.
// Route: GET /api/ref/bus-stations?depot=ID
func HandleBusStationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return listRefCollection(app, e, "bus_stations", "depot", e.Request.URL.Query().Get("depot"))
	}
}

// HandleBusStandList returns the bus stands of one bus station.
// Route: GET /api/ref/bus-stands?bus_station=ID
func HandleBusStandList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return listRefCollection(app, e, "bus_stands", "bus_station", e.Request.URL.Query().Get("bus_station"))
	}
}

// listRefCollection fetches a page of a reference collection, optionally
// filtered to one parent. Children are only ever served per-parent, so the
// cascading selects cannot mix options from a stale parent.
func listRefCollection(app *pocketbase.PocketBase, e *core.RequestEvent, collection, parentField, parentID string) error {
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		log.Printf("ref_data: could not find %s collection: %v", collection, err)
		return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
	}

	page, pageSize := parsePagination(e.Request)
	offset := (page - 1) * pageSize

	filter := ""
	params := map[string]any{}
	countExprs := []dbx.Expression{}
	if parentField != "" {
		if parentID == "" {
			return APIError(e, http.StatusBadRequest, "missing_parent", parentField+" query parameter is required", nil)
		}
		filter = parentField + " = {:parent}"
		params["parent"] = parentID
		countExprs = append(countExprs, dbx.HashExp{parentField: parentID})
	}

	records, err := app.FindRecordsByFilter(col, filter, "name", pageSize, offset, params)
	if err != nil {
		log.Printf("ref_data: could not query %s: %v", collection, err)
		return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
	}

	total, err := app.CountRecords(col, countExprs...)
	if err != nil {
		log.Printf("ref_data: could not count %s: %v", collection, err)
		total = int64(len(records))
	}

	items := make([]RefItem, 0, len(records))
	for _, rec := range records {
		items = append(items, RefItem{
			ID:     rec.Id,
			Name:   rec.GetString("name"),
			Parent: rec.GetString(parentField),
		})
	}

	return OKList(e, items, Pagination{Page: page, PageSize: pageSize, Total: int(total)})
}

// HandleProductList returns the catalog entries of one product group, or
// the whole catalog when no group is given.
// Route: GET /api/ref/products?group=camera
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			log.Printf("ref_data: could not find products collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		group := e.Request.URL.Query().Get("group")
		if group != "" && !services.IsProductGroup(group) {
			return APIError(e, http.StatusBadRequest, "invalid_group", "Unknown product group: "+group, nil)
		}

		page, pageSize := parsePagination(e.Request)
		offset := (page - 1) * pageSize

		filter := ""
		params := map[string]any{}
		countExprs := []dbx.Expression{}
		if group != "" {
			filter = "group = {:group}"
			params["group"] = group
			countExprs = append(countExprs, dbx.HashExp{"group": group})
		}

		records, err := app.FindRecordsByFilter(col, filter, "name", pageSize, offset, params)
		if err != nil {
			log.Printf("ref_data: could not query products: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		total, err := app.CountRecords(col, countExprs...)
		if err != nil {
			log.Printf("ref_data: could not count products: %v", err)
			total = int64(len(records))
		}

		items := make([]ProductItem, 0, len(records))
		for _, rec := range records {
			items = append(items, ProductItem{
				ID:    rec.Id,
				Name:  rec.GetString("name"),
				Group: rec.GetString("group"),
				Price: rec.GetFloat("price"),
			})
		}

		return OKList(e, items, Pagination{Page: page, PageSize: pageSize, Total: int(total)})
	}
}

// HandleProductPriceUpdate changes a catalog price. Pending BOQ valuations
// pick the new price up immediately; frozen BOQs keep their snapshots.
// Route: PATCH /api/ref/products/{id}/price
func HandleProductPriceUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		productID := e.Request.PathValue("id")

		product, err := app.FindRecordById("products", productID)
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "Product not found", nil)
		}

		var body struct {
			Price float64 `json:"price"`
		}
		if err := e.BindBody(&body); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if body.Price < 0 {
			return APIError(e, http.StatusBadRequest, "invalid_price", "Price must not be negative", nil)
		}

		product.Set("price", body.Price)
		if err := app.Save(product); err != nil {
			log.Printf("ref_data: could not update product %s price: %v", productID, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return OKData(e, ProductItem{
			ID:    product.Id,
			Name:  product.GetString("name"),
			Group: product.GetString("group"),
			Price: product.GetFloat("price"),
		})
	}
}
