package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/services"
)

const maxUploadSize = 10 << 20 // 10MB

// HandleLocationImportValidate accepts a multipart CSV/XLSX upload, parses
// it, and returns the dedup decision without writing anything. The client
// shows the accepted/skipped/error breakdown and then posts the accepted
// rows back to the commit endpoint.
// Route: POST /api/locations/import/validate (multipart field "file")
func HandleLocationImportValidate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(maxUploadSize); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_upload", "Could not parse upload (max 10MB)", nil)
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return APIError(e, http.StatusBadRequest, "missing_file", "No file uploaded (field \"file\")", nil)
		}
		defer file.Close()

		result, err := services.ValidateLocationFile(app, file, header.Filename)
		if err != nil {
			return APIError(e, http.StatusBadRequest, "unparseable", err.Error(), nil)
		}

		return OKData(e, map[string]any{
			"file_name":  header.Filename,
			"total_rows": result.TotalRows,
			"accepted":   result.Decision.Accepted,
			"skipped":    result.Decision.Skipped,
			"errors":     result.Decision.Errors,
		})
	}
}

// HandleLocationImportCommit inserts previously validated rows. The dedup
// decision is recomputed first so locations created between validate and
// commit are skipped rather than duplicated.
// Route: POST /api/locations/import/commit
func HandleLocationImportCommit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Rows []map[string]string `json:"rows"`
		}
		if err := e.BindBody(&body); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if len(body.Rows) == 0 {
			return APIError(e, http.StatusBadRequest, "empty_import", "No rows to import", nil)
		}

		result, err := services.CommitLocationImport(app, body.Rows)
		if err != nil {
			log.Printf("location_import: commit failed: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		log.Printf("location_import: imported %d of %d rows (%d skipped, %d failed)",
			result.Imported, result.TotalRows, len(result.Skipped), result.Failed)

		return OKData(e, result)
	}
}

// HandleLocationImportErrorReport renders validation errors as a
// downloadable spreadsheet. The client posts back the errors it got from
// the validate endpoint.
// Route: POST /api/locations/import/errors
func HandleLocationImportErrorReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Errors []services.ValidationError `json:"errors"`
		}
		if err := e.BindBody(&body); err != nil {
			return APIError(e, http.StatusBadRequest, "bad_request", "Invalid request body", nil)
		}
		if len(body.Errors) == 0 {
			return APIError(e, http.StatusBadRequest, "no_errors", "No errors to report", nil)
		}

		report, err := services.GenerateErrorReport(body.Errors)
		if err != nil {
			log.Printf("location_import: could not build error report: %v", err)
			return APIError(e, http.StatusInternalServerError, "internal", "Internal error", nil)
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="location-import-errors.xlsx"`)
		e.Response.WriteHeader(http.StatusOK)
		_, err = e.Response.Write(report)
		return err
	}
}

// HandleLocationImportTemplate describes the upload template columns so the
// client can render them and generate a blank sheet.
// Route: GET /api/locations/import/template
func HandleLocationImportTemplate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		fields := services.LocationTemplateFields()
		cols := make([]map[string]any, 0, len(fields))
		for _, f := range fields {
			cols = append(cols, map[string]any{
				"key":      f.Key,
				"label":    f.Label,
				"required": f.Required,
			})
		}
		return OKData(e, cols)
	}
}
