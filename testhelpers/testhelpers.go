// Package testhelpers provides utilities for testing PocketBase-based
// applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestDivision creates a division record with the given name.
func CreateTestDivision(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("divisions")
	if err != nil {
		t.Fatalf("failed to find divisions collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test division: %v", err)
	}

	return record
}

// CreateTestDepot creates a depot record under a division.
func CreateTestDepot(t *testing.T, app *pocketbase.PocketBase, divisionID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("depots")
	if err != nil {
		t.Fatalf("failed to find depots collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("division", divisionID)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test depot: %v", err)
	}

	return record
}

// CreateTestBusStation creates a bus station record under a depot.
func CreateTestBusStation(t *testing.T, app *pocketbase.PocketBase, depotID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("bus_stations")
	if err != nil {
		t.Fatalf("failed to find bus_stations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("depot", depotID)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test bus station: %v", err)
	}

	return record
}

// CreateTestBusStand creates a bus stand record under a bus station.
func CreateTestBusStand(t *testing.T, app *pocketbase.PocketBase, stationID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("bus_stands")
	if err != nil {
		t.Fatalf("failed to find bus_stands collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("bus_station", stationID)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test bus stand: %v", err)
	}

	return record
}

// TestSite bundles one full division->stand chain.
type TestSite struct {
	Division *core.Record
	Depot    *core.Record
	Station  *core.Record
	Stand    *core.Record
}

// CreateTestSite creates a full four-level site chain.
func CreateTestSite(t *testing.T, app *pocketbase.PocketBase, prefix string) TestSite {
	t.Helper()

	division := CreateTestDivision(t, app, prefix+" Division")
	depot := CreateTestDepot(t, app, division.Id, prefix+" Depot")
	station := CreateTestBusStation(t, app, depot.Id, prefix+" Bus Terminus")
	stand := CreateTestBusStand(t, app, station.Id, "Platform 1")

	return TestSite{Division: division, Depot: depot, Station: station, Stand: stand}
}

// CreateTestProduct creates a catalog product.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, name, group string, price float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("group", group)
	record.Set("price", price)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}

	return record
}

// CreateTestBOQ creates a BOQ record against a site in the given state.
func CreateTestBOQ(t *testing.T, app *pocketbase.PocketBase, site TestSite, state string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boqs")
	if err != nil {
		t.Fatalf("failed to find boqs collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("division", site.Division.Id)
	record.Set("depot", site.Depot.Id)
	record.Set("bus_station", site.Station.Id)
	record.Set("bus_stand", site.Stand.Id)
	record.Set("state", state)
	record.Set("raised_by", "Test Surveyor")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ: %v", err)
	}

	return record
}

// CreateTestBOQItem creates a line item on a BOQ. product may be nil for
// legacy rows without a catalog relation.
func CreateTestBOQItem(t *testing.T, app *pocketbase.PocketBase, boqID string, product *core.Record, name, group string, qty, unitPrice float64, sortOrder int) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("boq_items")
	if err != nil {
		t.Fatalf("failed to find boq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("boq", boqID)
	if product != nil {
		record.Set("product", product.Id)
	}
	record.Set("product_name", name)
	record.Set("product_group", group)
	record.Set("qty", qty)
	record.Set("unit_price", unitPrice)
	record.Set("sort_order", sortOrder)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BOQ item: %v", err)
	}

	return record
}

// CreateTestInstallation creates an installed-product record against a BOQ.
func CreateTestInstallation(t *testing.T, app *pocketbase.PocketBase, boqID, productName, serial string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("installed_products")
	if err != nil {
		t.Fatalf("failed to find installed_products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("boq", boqID)
	record.Set("product_name", productName)
	record.Set("serial_number", serial)
	record.Set("installed_by", "Test Technician")
	record.Set("state", "installed")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test installation: %v", err)
	}

	return record
}

// CreateTestLocation creates a polling location record.
func CreateTestLocation(t *testing.T, app *pocketbase.PocketBase, assemblyNo, psNo, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("locations")
	if err != nil {
		t.Fatalf("failed to find locations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("assembly_no", assemblyNo)
	record.Set("ps_no", psNo)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test location: %v", err)
	}

	return record
}
