package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

// LocationView is one polling-location row.
type LocationView struct {
	ID         string `json:"id"`
	AssemblyNo string `json:"assembly_no"`
	PSNo       string `json:"ps_no"`
	Name       string `json:"name"`
	District   string `json:"district,omitempty"`
	Address    string `json:"address,omitempty"`
	Latitude   string `json:"latitude,omitempty"`
	Longitude  string `json:"longitude,omitempty"`
}

// HandleLocationList returns polling locations, optionally filtered by
// assembly number or a name/address search term.
// Route: GET /api/locations?assembly_no=42&q=school
func HandleLocationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("locations")
		if err != nil {
			log.Printf("locations: could not find locations collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		query := e.Request.URL.Query()
		assemblyNo := strings.TrimSpace(query.Get("assembly_no"))
		search := strings.TrimSpace(query.Get("q"))

		var filters []string
		params := map[string]any{}
		countExp := dbx.HashExp{}
		if assemblyNo != "" {
			filters = append(filters, "assembly_no = {:assembly}")
			params["assembly"] = assemblyNo
			countExp["assembly_no"] = assemblyNo
		}
		if search != "" {
			filters = append(filters, "(name ~ {:q} || address ~ {:q} || district ~ {:q})")
			params["q"] = search
		}

		page, pageSize := parsePagination(e.Request)
		offset := (page - 1) * pageSize

		records, err := app.FindRecordsByFilter(col, strings.Join(filters, " && "), "assembly_no, ps_no", pageSize, offset, params)
		if err != nil {
			log.Printf("locations: could not query locations: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		// The search filter cannot be expressed as a HashExp; fall back to
		// the page length so pagination stays usable.
		var total int64
		if search == "" {
			countExprs := []dbx.Expression{}
			if len(countExp) > 0 {
				countExprs = append(countExprs, countExp)
			}
			total, err = app.CountRecords(col, countExprs...)
			if err != nil {
				log.Printf("locations: could not count locations: %v", err)
				total = int64(len(records))
			}
		} else {
			total = int64(len(records))
		}

		rows := make([]LocationView, 0, len(records))
		for _, rec := range records {
			rows = append(rows, locationView(rec))
		}

		return OKList(e, rows, Pagination{Page: page, PageSize: pageSize, Total: int(total)})
	}
}

// HandleLocationCreate creates a single polling location. A row whose
// assembly/PS key already exists is rejected with 409.
// Route: POST /api/locations
func HandleLocationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var input services.LocationInput
		if err := e.BindBody(&input); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if err := input.Validate(); err != nil {
			return APIError(e, http.StatusBadRequest, "validation", "Location has invalid fields", validationFields(err))
		}

		key := services.LocationKey(input.AssemblyNo, input.PSNo)
		existing, err := app.FindRecordsByFilter("locations",
			"assembly_no = {:assembly} && ps_no = {:ps}", "", 1, 0,
			map[string]any{"assembly": strings.TrimSpace(input.AssemblyNo), "ps": strings.TrimSpace(input.PSNo)})
		if err != nil {
			log.Printf("locations: could not check for duplicate %s: %v", key, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}
		if len(existing) > 0 {
			return APIError(e, http.StatusConflict, "duplicate_location",
				"Location "+key+" already exists", nil)
		}

		col, err := app.FindCollectionByNameOrId("locations")
		if err != nil {
			log.Printf("locations: could not find locations collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		record := core.NewRecord(col)
		record.Set("assembly_no", strings.TrimSpace(input.AssemblyNo))
		record.Set("ps_no", strings.TrimSpace(input.PSNo))
		record.Set("name", strings.TrimSpace(input.Name))
		record.Set("district", strings.TrimSpace(input.District))
		record.Set("address", strings.TrimSpace(input.Address))
		record.Set("latitude", strings.TrimSpace(input.Latitude))
		record.Set("longitude", strings.TrimSpace(input.Longitude))

		if err := app.Save(record); err != nil {
			log.Printf("locations: could not save location %s: %v", key, err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return Created(e, locationView(record))
	}
}

func locationView(rec *core.Record) LocationView {
	return LocationView{
		ID:         rec.Id,
		AssemblyNo: rec.GetString("assembly_no"),
		PSNo:       rec.GetString("ps_no"),
		Name:       rec.GetString("name"),
		District:   rec.GetString("district"),
		Address:    rec.GetString("address"),
		Latitude:   rec.GetString("latitude"),
		Longitude:  rec.GetString("longitude"),
	}
}
