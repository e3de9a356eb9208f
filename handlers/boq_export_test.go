package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cctvrollout/testhelpers"
)

func TestHandleBOQExport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Export")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 3850)
	boq := testhelpers.CreateTestBOQ(t, app, site, "approved")
	testhelpers.CreateTestBOQItem(t, app, boq.Id, camera, "Dome Camera", "camera", 3, 3850, 1)

	handler := HandleBOQExport(app)
	req := httptest.NewRequest(http.MethodGet, "/api/boqs/"+boq.Id+"/export", nil)
	req.SetPathValue("id", boq.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".pdf") {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body does not start with %PDF header")
	}
}

func TestHandleBOQExport_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	handler := HandleBOQExport(app)
	req := httptest.NewRequest(http.MethodGet, "/api/boqs/missing/export", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestBuildExportData(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "ExportData")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 500)
	boq := testhelpers.CreateTestBOQ(t, app, site, "pending")
	testhelpers.CreateTestBOQItem(t, app, boq.Id, camera, "Dome Camera", "camera", 2, 0, 1)

	data, err := buildExportData(app, boq)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if data.PriceMode != "live" {
		t.Errorf("price mode = %q, want live for pending BOQ", data.PriceMode)
	}
	if data.TotalCost != 1000 {
		t.Errorf("total = %v, want 1000 from catalog", data.TotalCost)
	}
	if !strings.Contains(data.SiteName, "ExportData Division") {
		t.Errorf("site name = %q", data.SiteName)
	}
	if len(data.Rows) != 1 || data.Rows[0].UnitPrice != 500 {
		t.Errorf("rows = %+v", data.Rows)
	}
}

func TestExportFileName(t *testing.T) {
	got := exportFileName("Chennai / Broadway Depot / Platform 1", "abc123")
	want := "boq-chennai-broadway-depot-platform-1-abc123.pdf"
	if got != want {
		t.Errorf("exportFileName = %q, want %q", got, want)
	}

	if got := exportFileName("///", "x1"); got != "boq-boq-x1.pdf" {
		t.Errorf("degenerate site name gave %q", got)
	}
}
