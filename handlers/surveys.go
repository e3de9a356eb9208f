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

// SurveyView is one field-survey row.
type SurveyView struct {
	ID             string `json:"id"`
	Location       string `json:"location"`
	LocationName   string `json:"location_name,omitempty"`
	BusStand       string `json:"bus_stand,omitempty"`
	SurveyedBy     string `json:"surveyed_by"`
	SurveyDate     string `json:"survey_date,omitempty"`
	SignalStrength int    `json:"signal_strength"`
	SiteCondition  string `json:"site_condition,omitempty"`
	PowerAvailable bool   `json:"power_available"`
	Remarks        string `json:"remarks,omitempty"`
	Created        string `json:"created"`
}

// HandleSurveyList returns surveys, optionally filtered to one location.
// Route: GET /api/surveys?location=ID
func HandleSurveyList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("surveys")
		if err != nil {
			log.Printf("surveys: could not find surveys collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		location := e.Request.URL.Query().Get("location")

		filter := ""
		params := map[string]any{}
		countExprs := []dbx.Expression{}
		if location != "" {
			filter = "location = {:location}"
			params["location"] = location
			countExprs = append(countExprs, dbx.HashExp{"location": location})
		}

		page, pageSize := parsePagination(e.Request)
		offset := (page - 1) * pageSize

		records, err := app.FindRecordsByFilter(col, filter, "-created", pageSize, offset, params)
		if err != nil {
			log.Printf("surveys: could not query surveys: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		total, err := app.CountRecords(col, countExprs...)
		if err != nil {
			log.Printf("surveys: could not count surveys: %v", err)
			total = int64(len(records))
		}

		names := newNameCache(app)
		rows := make([]SurveyView, 0, len(records))
		for _, rec := range records {
			view := surveyView(rec)
			view.LocationName = names.get("locations", rec.GetString("location"))
			rows = append(rows, view)
		}

		return OKList(e, rows, Pagination{Page: page, PageSize: pageSize, Total: int(total)})
	}
}

// HandleSurveyCreate records a field survey against a polling location.
// Route: POST /api/surveys
func HandleSurveyCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var input services.SurveyInput
		if err := e.BindBody(&input); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if err := input.Validate(); err != nil {
			return APIError(e, http.StatusBadRequest, "validation", "Survey has invalid fields", validationFields(err))
		}

		if _, err := app.FindRecordById("locations", input.Location); err != nil {
			return APIError(e, http.StatusBadRequest, "unknown_location", "Location not found", nil)
		}
		if input.BusStand != "" {
			if _, err := app.FindRecordById("bus_stands", input.BusStand); err != nil {
				return APIError(e, http.StatusBadRequest, "unknown_stand", "Bus stand not found", nil)
			}
		}

		col, err := app.FindCollectionByNameOrId("surveys")
		if err != nil {
			log.Printf("surveys: could not find surveys collection: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		record := core.NewRecord(col)
		record.Set("location", input.Location)
		if input.BusStand != "" {
			record.Set("bus_stand", input.BusStand)
		}
		record.Set("surveyed_by", strings.TrimSpace(input.SurveyedBy))
		record.Set("survey_date", input.SurveyDate)
		record.Set("signal_strength", input.SignalStrength)
		record.Set("site_condition", input.SiteCondition)
		record.Set("power_available", input.PowerAvailable)
		record.Set("remarks", strings.TrimSpace(input.Remarks))

		if err := app.Save(record); err != nil {
			log.Printf("surveys: could not save survey: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		return Created(e, surveyView(record))
	}
}

func surveyView(rec *core.Record) SurveyView {
	return SurveyView{
		ID:             rec.Id,
		Location:       rec.GetString("location"),
		BusStand:       rec.GetString("bus_stand"),
		SurveyedBy:     rec.GetString("surveyed_by"),
		SurveyDate:     rec.GetString("survey_date"),
		SignalStrength: rec.GetInt("signal_strength"),
		SiteCondition:  rec.GetString("site_condition"),
		PowerAvailable: rec.GetBool("power_available"),
		Remarks:        rec.GetString("remarks"),
		Created:        rec.GetString("created"),
	}
}
