package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"cctvrollout/testhelpers"
)

func TestHandleLocationCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleLocationCreate(app)
	body := map[string]any{
		"assembly_no": "42",
		"ps_no":       "101",
		"name":        "Govt High School",
		"district":    "Chennai",
	}
	req := newJSONRequest(t, http.MethodPost, "/api/locations", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same assembly/PS key again is a conflict.
	req = newJSONRequest(t, http.MethodPost, "/api/locations", body)
	rec = httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate key, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "duplicate_location" {
		t.Errorf("error code = %q, want duplicate_location", code)
	}
}

func TestHandleLocationCreate_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleLocationCreate(app)
	body := map[string]any{
		"assembly_no": "12345", // too many digits
		"ps_no":       "101",
		"name":        "Govt High School",
	}
	req := newJSONRequest(t, http.MethodPost, "/api/locations", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleLocationList_AssemblyFilter(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestLocation(t, app, "42", "100", "Govt High School")
	testhelpers.CreateTestLocation(t, app, "42", "101", "Panchayat Office")
	testhelpers.CreateTestLocation(t, app, "43", "1", "Community Hall")

	handler := HandleLocationList(app)
	req := httptest.NewRequest(http.MethodGet, "/api/locations?assembly_no=42", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rows []LocationView
	decodeData(t, rec, &rows)
	if len(rows) != 2 {
		t.Errorf("filtered locations = %d, want 2", len(rows))
	}
}

func TestHandleLocationImportValidate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestLocation(t, app, "42", "101", "Already Here")

	csvData := "Assembly No,PS No,Location Name\n" +
		"42,100,Govt High School\n" +
		"42,101,Clashes With Existing\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "locations.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(csvData))
	writer.Close()

	handler := HandleLocationImportValidate(app)
	req := httptest.NewRequest(http.MethodPost, "/api/locations/import/validate", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		TotalRows int                 `json:"total_rows"`
		Accepted  []map[string]string `json:"accepted"`
		Skipped   []struct {
			Key string `json:"key"`
		} `json:"skipped"`
	}
	decodeData(t, rec, &result)
	if result.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", result.TotalRows)
	}
	if len(result.Accepted) != 1 {
		t.Errorf("accepted = %d, want 1", len(result.Accepted))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Key != "42_101" {
		t.Errorf("skipped = %+v, want the existing key", result.Skipped)
	}

	// Nothing is written by validation.
	locations, _ := app.FindAllRecords("locations")
	if len(locations) != 1 {
		t.Errorf("locations after validate = %d, want 1", len(locations))
	}
}

func TestHandleLocationImportCommit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestLocation(t, app, "42", "101", "Already Here")

	handler := HandleLocationImportCommit(app)
	body := map[string]any{
		"rows": []map[string]string{
			{"assembly_no": "42", "ps_no": "100", "name": "Govt High School"},
			{"assembly_no": "42", "ps_no": "101", "name": "Concurrent Duplicate"},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/locations/import/commit", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Imported int `json:"imported"`
		Skipped  []struct {
			Key string `json:"key"`
		} `json:"skipped"`
	}
	decodeData(t, rec, &result)
	if result.Imported != 1 {
		t.Errorf("imported = %d, want 1", result.Imported)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("skipped = %d, want 1", len(result.Skipped))
	}

	locations, _ := app.FindAllRecords("locations")
	if len(locations) != 2 {
		t.Errorf("locations after commit = %d, want 2", len(locations))
	}
}

func TestHandleLocationImportErrorReport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleLocationImportErrorReport(app)
	body := map[string]any{
		"errors": []map[string]any{
			{"row": 2, "field": "Assembly No", "message": "Assembly number must be 1-3 digits"},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/locations/import/errors", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty report body")
	}
}

func TestHandleLocationImportTemplate(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleLocationImportTemplate(app)
	req := httptest.NewRequest(http.MethodGet, "/api/locations/import/template", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var cols []struct {
		Key      string `json:"key"`
		Required bool   `json:"required"`
	}
	decodeData(t, rec, &cols)
	if len(cols) != 7 {
		t.Errorf("template columns = %d, want 7", len(cols))
	}
}
