package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cctvrollout/testhelpers"
)

func TestHandleDashboard(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	site := testhelpers.CreateTestSite(t, app, "Dash")
	camera := testhelpers.CreateTestProduct(t, app, "Dome Camera", "camera", 500)

	pending := testhelpers.CreateTestBOQ(t, app, site, "pending")
	testhelpers.CreateTestBOQItem(t, app, pending.Id, camera, "Dome Camera", "camera", 2, 0, 1)

	approved := testhelpers.CreateTestBOQ(t, app, site, "approved")
	approved.Set("total_cost", 1500)
	if err := app.Save(approved); err != nil {
		t.Fatalf("save approved BOQ: %v", err)
	}
	testhelpers.CreateTestBOQItem(t, app, approved.Id, camera, "Dome Camera", "camera", 3, 500, 1)
	testhelpers.CreateTestInstallation(t, app, approved.Id, "Dome Camera", "SN-0001")

	handler := HandleDashboard(app)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary DashboardSummary
	decodeData(t, rec, &summary)

	if summary.TotalBOQs != 2 {
		t.Errorf("total BOQs = %d, want 2", summary.TotalBOQs)
	}
	if summary.StateCounts["pending"] != 1 || summary.StateCounts["approved"] != 1 {
		t.Errorf("state counts = %+v", summary.StateCounts)
	}
	if summary.PendingValue != 1000 {
		t.Errorf("pending value = %v, want 1000 (2 x catalog 500)", summary.PendingValue)
	}
	if summary.ApprovedValue != 1500 {
		t.Errorf("approved value = %v, want 1500 from frozen total", summary.ApprovedValue)
	}
	if summary.RequestedUnits != 3 {
		t.Errorf("requested units = %v, want 3", summary.RequestedUnits)
	}
	if summary.InstalledUnits != 1 {
		t.Errorf("installed units = %d, want 1", summary.InstalledUnits)
	}
	if len(summary.Divisions) != 1 || summary.Divisions[0].BOQs != 2 {
		t.Errorf("division rollup = %+v", summary.Divisions)
	}
}

func TestHandleDashboard_ScopedToActiveDivision(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	siteA := testhelpers.CreateTestSite(t, app, "ScopeA")
	siteB := testhelpers.CreateTestSite(t, app, "ScopeB")
	testhelpers.CreateTestBOQ(t, app, siteA, "pending")
	testhelpers.CreateTestBOQ(t, app, siteB, "pending")
	testhelpers.CreateTestBOQ(t, app, siteB, "completed")

	handler := HandleDashboard(app)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	active := &ActiveDivision{ID: siteB.Division.Id, Name: siteB.Division.GetString("name")}
	req = req.WithContext(context.WithValue(req.Context(), ActiveDivisionKey, active))
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var summary DashboardSummary
	decodeData(t, rec, &summary)

	if summary.TotalBOQs != 2 {
		t.Errorf("scoped total BOQs = %d, want 2", summary.TotalBOQs)
	}
	if summary.StateCounts["completed"] != 1 {
		t.Errorf("scoped completed count = %d, want 1", summary.StateCounts["completed"])
	}
	if len(summary.Divisions) != 1 || summary.Divisions[0].ID != siteB.Division.Id {
		t.Errorf("scoped rollup = %+v, want only the active division", summary.Divisions)
	}
	if summary.ActiveDivision == nil || summary.ActiveDivision.ID != siteB.Division.Id {
		t.Errorf("active division echo = %+v", summary.ActiveDivision)
	}
}
