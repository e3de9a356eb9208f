package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cctvrollout/testhelpers"
)

func TestHandleBOQCreate_Valid(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Create")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 3850)
	nvr := testhelpers.CreateTestProduct(t, app, "16ch NVR", "nvr", 24500)

	handler := HandleBOQCreate(app)
	body := map[string]any{
		"division":    site.Division.Id,
		"depot":       site.Depot.Id,
		"bus_station": site.Station.Id,
		"bus_stand":   site.Stand.Id,
		"raised_by":   "Surveyor S",
		"selections": map[string]any{
			"camera": []map[string]any{
				{"product": camera.Id, "count": 4},
				{}, // blank add-row click, skipped
			},
			"nvr": []map[string]any{
				{"product": nvr.Id, "count": 1},
			},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/boqs", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		ID        string `json:"id"`
		State     string `json:"state"`
		ItemCount int    `json:"item_count"`
	}
	decodeData(t, rec, &created)
	if created.State != "pending" {
		t.Errorf("state = %q, want pending", created.State)
	}
	if created.ItemCount != 2 {
		t.Errorf("item_count = %d, want 2 (blank row skipped)", created.ItemCount)
	}

	items, err := app.FindRecordsByFilter("boq_items", "boq = {:b}", "sort_order", 0, 0, map[string]any{"b": created.ID})
	if err != nil || len(items) != 2 {
		t.Fatalf("expected 2 items in database, got %d (err %v)", len(items), err)
	}
	for _, item := range items {
		if item.GetFloat("unit_price") != 0 {
			t.Errorf("new item has non-zero unit_price %v, prices must stay live", item.GetFloat("unit_price"))
		}
		if item.GetString("product_name") == "" || item.GetString("product_group") == "" {
			t.Errorf("item missing denormalized product fields: %v", item)
		}
	}
}

func TestHandleBOQCreate_RejectsBadCounts(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "BadCount")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 3850)

	handler := HandleBOQCreate(app)
	for _, count := range []any{-3, 0, 2.5, "NaN", "abc"} {
		body := map[string]any{
			"division":    site.Division.Id,
			"depot":       site.Depot.Id,
			"bus_station": site.Station.Id,
			"raised_by":   "Surveyor S",
			"selections": map[string]any{
				"camera": []map[string]any{{"product": camera.Id, "count": count}},
			},
		}
		req := newJSONRequest(t, http.MethodPost, "/api/boqs", body)
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("count %v: expected 400, got %d", count, rec.Code)
		}
	}
}

func TestHandleBOQCreate_RejectsBrokenSiteChain(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "ChainA")
	other := testhelpers.CreateTestSite(t, app, "ChainB")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 3850)

	handler := HandleBOQCreate(app)
	body := map[string]any{
		"division":    site.Division.Id,
		"depot":       other.Depot.Id, // belongs to the other division
		"bus_station": site.Station.Id,
		"raised_by":   "Surveyor S",
		"selections": map[string]any{
			"camera": []map[string]any{{"product": camera.Id, "count": 1}},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/boqs", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "invalid_site" {
		t.Errorf("error code = %q, want invalid_site", code)
	}
}

func TestHandleBOQCreate_RejectsGroupMismatch(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Mismatch")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 3850)

	handler := HandleBOQCreate(app)
	body := map[string]any{
		"division":    site.Division.Id,
		"depot":       site.Depot.Id,
		"bus_station": site.Station.Id,
		"raised_by":   "Surveyor S",
		"selections": map[string]any{
			// Camera product submitted under the nvr group.
			"nvr": []map[string]any{{"product": camera.Id, "count": 1}},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/boqs", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "group_mismatch" {
		t.Errorf("error code = %q, want group_mismatch", code)
	}
}

func TestHandleBOQCreate_RejectsEmptySelection(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Empty")

	handler := HandleBOQCreate(app)
	body := map[string]any{
		"division":    site.Division.Id,
		"depot":       site.Depot.Id,
		"bus_station": site.Station.Id,
		"raised_by":   "Surveyor S",
		"selections": map[string]any{
			"camera": []map[string]any{{}},
		},
	}
	req := newJSONRequest(t, http.MethodPost, "/api/boqs", body)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != "empty_selection" {
		t.Errorf("error code = %q, want empty_selection", code)
	}
}
