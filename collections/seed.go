package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type standDef struct {
	name string
}

type stationDef struct {
	name   string
	stands []standDef
}

type depotDef struct {
	name     string
	stations []stationDef
}

type divisionDef struct {
	name   string
	depots []depotDef
}

type productDef struct {
	name  string
	group string
	price float64
}

// Seed populates the site hierarchy and product catalog with realistic
// rollout data. It is safe to call on every startup because it returns
// early if any division records already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if divisions already exist ─────────────────
	divisionsCol, err := app.FindCollectionByNameOrId("divisions")
	if err != nil {
		return fmt.Errorf("seed: could not find divisions collection: %w", err)
	}
	existing, err := app.FindAllRecords(divisionsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query divisions: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	if err := seedHierarchy(app, divisionsCol); err != nil {
		return err
	}
	return seedProducts(app)
}

func hierarchyDefs() []divisionDef {
	return []divisionDef{
		{
			name: "Chennai",
			depots: []depotDef{
				{
					name: "Broadway Depot",
					stations: []stationDef{
						{
							name: "Broadway Bus Terminus",
							stands: []standDef{
								{"Platform 1"}, {"Platform 2"}, {"Platform 3"},
							},
						},
						{
							name: "CMBT Koyambedu",
							stands: []standDef{
								{"Bay A"}, {"Bay B"}, {"Bay C"}, {"Bay D"},
							},
						},
					},
				},
				{
					name: "Tambaram Depot",
					stations: []stationDef{
						{
							name: "Tambaram Bus Stand",
							stands: []standDef{
								{"East Wing"}, {"West Wing"},
							},
						},
					},
				},
			},
		},
		{
			name: "Madurai",
			depots: []depotDef{
				{
					name: "Mattuthavani Depot",
					stations: []stationDef{
						{
							name: "Mattuthavani Integrated Bus Terminus",
							stands: []standDef{
								{"Platform 1"}, {"Platform 2"},
							},
						},
						{
							name: "Arapalayam Bus Stand",
							stands: []standDef{
								{"Platform 1"},
							},
						},
					},
				},
			},
		},
		{
			name: "Coimbatore",
			depots: []depotDef{
				{
					name: "Gandhipuram Depot",
					stations: []stationDef{
						{
							name: "Gandhipuram Central Bus Terminus",
							stands: []standDef{
								{"Platform 1"}, {"Platform 2"}, {"Platform 3"},
							},
						},
						{
							name: "Singanallur Bus Stand",
							stands: []standDef{
								{"Platform 1"}, {"Platform 2"},
							},
						},
					},
				},
			},
		},
	}
}

func productDefs() []productDef {
	return []productDef{
		{"Hikvision DS-7616NI 16ch NVR", "nvr", 24500},
		{"CP Plus CP-UNR-4K2161 16ch NVR", "nvr", 19800},
		{"Hikvision 4MP IR Dome Camera", "camera", 3850},
		{"Hikvision 4MP IR Bullet Camera", "camera", 4200},
		{"CP Plus 2.4MP Dome Camera", "camera", 2100},
		{"D-Link DGS-1008P 8-port PoE Switch", "switch", 5600},
		{"Netgear GS316P 16-port PoE Switch", "switch", 14200},
		{"Valrack 6U Wall Mount Rack", "rack", 3200},
		{"Valrack 9U Wall Mount Rack", "rack", 4600},
		{"GI Pole 4m with Base Plate", "pole", 2800},
		{"GI Pole 6m with Base Plate", "pole", 4100},
		{"Polycarbonate Weatherproof Box 300x200", "weatherproof_box", 850},
		{"CAT6 Outdoor Cable 305m Box", "cable", 6400},
		{"RG59+2C Coaxial Cable 305m", "cable", 4800},
		{"PVC Conduit 25mm (per 100m)", "conduit", 1900},
		{"Flexible Conduit 20mm (per 100m)", "conduit", 1450},
		{"1.5 sqmm FRLS Copper Wire (per 90m)", "wire", 1650},
		{"APC BX600C-IN 600VA UPS", "ups", 2900},
		{"Luminous 1KVA Line Interactive UPS", "ups", 7800},
		{"LG 22-inch LED Monitor", "lcd", 7200},
		{"Samsung 32-inch LED Monitor", "lcd", 16900},
	}
}

// seedHierarchy walks the division defs and creates the four levels in
// order, wiring each child to its parent's record id.
func seedHierarchy(app *pocketbase.PocketBase, divisionsCol *core.Collection) error {
	depotsCol, err := app.FindCollectionByNameOrId("depots")
	if err != nil {
		return fmt.Errorf("seed: could not find depots collection: %w", err)
	}
	stationsCol, err := app.FindCollectionByNameOrId("bus_stations")
	if err != nil {
		return fmt.Errorf("seed: could not find bus_stations collection: %w", err)
	}
	standsCol, err := app.FindCollectionByNameOrId("bus_stands")
	if err != nil {
		return fmt.Errorf("seed: could not find bus_stands collection: %w", err)
	}

	for _, div := range hierarchyDefs() {
		divRecord := core.NewRecord(divisionsCol)
		divRecord.Set("name", div.name)
		if err := app.Save(divRecord); err != nil {
			log.Printf("seed: could not save division %q: %v", div.name, err)
			continue
		}

		for _, dep := range div.depots {
			depRecord := core.NewRecord(depotsCol)
			depRecord.Set("name", dep.name)
			depRecord.Set("division", divRecord.Id)
			if err := app.Save(depRecord); err != nil {
				log.Printf("seed: could not save depot %q: %v", dep.name, err)
				continue
			}

			for _, st := range dep.stations {
				stRecord := core.NewRecord(stationsCol)
				stRecord.Set("name", st.name)
				stRecord.Set("depot", depRecord.Id)
				if err := app.Save(stRecord); err != nil {
					log.Printf("seed: could not save bus station %q: %v", st.name, err)
					continue
				}

				for _, stand := range st.stands {
					standRecord := core.NewRecord(standsCol)
					standRecord.Set("name", stand.name)
					standRecord.Set("bus_station", stRecord.Id)
					if err := app.Save(standRecord); err != nil {
						log.Printf("seed: could not save bus stand %q: %v", stand.name, err)
					}
				}
			}
		}
	}

	return nil
}

func seedProducts(app *pocketbase.PocketBase) error {
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}

	for _, p := range productDefs() {
		record := core.NewRecord(productsCol)
		record.Set("name", p.name)
		record.Set("group", p.group)
		record.Set("price", p.price)
		if err := app.Save(record); err != nil {
			log.Printf("seed: could not save product %q: %v", p.name, err)
		}
	}

	return nil
}
