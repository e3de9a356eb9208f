package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures all collections used by the CCTV
// rollout tracker: the four-level site hierarchy, the product catalog, BOQs
// with their line items, installed products, polling locations and surveys.
func Setup(app *pocketbase.PocketBase) {
	divisions := ensureCollection(app, "divisions", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
	})

	depots := ensureCollection(app, "depots", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:          "division",
			Required:      true,
			CollectionId:  divisions.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
	})

	busStations := ensureCollection(app, "bus_stations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:          "depot",
			Required:      true,
			CollectionId:  depots.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
	})

	busStands := ensureCollection(app, "bus_stands", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:          "bus_station",
			Required:      true,
			CollectionId:  busStations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
	})

	products := ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:     "group",
			Required: true,
			Values: []string{
				"nvr", "camera", "switch", "rack", "pole",
				"weatherproof_box", "cable", "conduit", "wire", "ups", "lcd",
			},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "price", Required: true})
	})

	boqs := ensureCollection(app, "boqs", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "division",
			Required:     true,
			CollectionId: divisions.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "depot",
			Required:     true,
			CollectionId: depots.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "bus_station",
			Required:     true,
			CollectionId: busStations.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "bus_stand",
			Required:     false,
			CollectionId: busStands.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.SelectField{
			Name:     "state",
			Required: true,
			Values: []string{
				"pending", "pending_purchase", "pending_approval",
				"approved", "completed", "rejected",
			},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "total_cost", Required: false})
		c.Fields.Add(&core.TextField{Name: "raised_by", Required: true})
		c.Fields.Add(&core.TextField{Name: "approved_by", Required: false})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "boq_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "boq",
			Required:      true,
			CollectionId:  boqs.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     false,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		// Denormalized so reconciliation and frozen BOQs survive catalog edits.
		c.Fields.Add(&core.TextField{Name: "product_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "product_group", Required: true})
		c.Fields.Add(&core.NumberField{Name: "qty", Required: true})
		// Zero until the lifecycle freezes it.
		c.Fields.Add(&core.NumberField{Name: "unit_price", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
	})

	ensureCollection(app, "installed_products", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "boq",
			Required:      true,
			CollectionId:  boqs.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "product_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "serial_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "installation_date", Required: false})
		c.Fields.Add(&core.TextField{Name: "installed_by", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "bus_stand",
			Required:     false,
			CollectionId: busStands.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "state",
			Required:  true,
			Values:    []string{"installed", "faulty", "replaced"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
		c.Fields.Add(&core.FileField{
			Name:      "installation_images",
			Required:  false,
			MaxSelect: 5,
			MaxSize:   5 << 20,
			MimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	locations := ensureCollection(app, "locations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "assembly_no", Required: true})
		c.Fields.Add(&core.TextField{Name: "ps_no", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "district", Required: false})
		c.Fields.Add(&core.TextField{Name: "address", Required: false})
		c.Fields.Add(&core.TextField{Name: "latitude", Required: false})
		c.Fields.Add(&core.TextField{Name: "longitude", Required: false})
	})

	ensureCollection(app, "surveys", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "location",
			Required:      true,
			CollectionId:  locations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "bus_stand",
			Required:     false,
			CollectionId: busStands.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "surveyed_by", Required: true})
		c.Fields.Add(&core.TextField{Name: "survey_date", Required: false})
		c.Fields.Add(&core.NumberField{Name: "signal_strength", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "site_condition",
			Required:  false,
			Values:    []string{"good", "needs_repair", "no_structure"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "power_available"})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
		c.Fields.Add(&core.FileField{
			Name:      "site_photos",
			Required:  false,
			MaxSelect: 5,
			MaxSize:   5 << 20,
			MimeTypes: []string{"image/jpeg", "image/png", "image/webp"},
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
