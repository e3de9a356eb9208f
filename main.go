package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cctvrollout/collections"
	"cctvrollout/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections, seed reference data and repair legacy rows on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateLegacyStateLabels(app); err != nil {
			log.Printf("Warning: state label migration failed: %v", err)
		}
		if err := collections.MigrateFrozenItemPrices(app); err != nil {
			log.Printf("Warning: item price migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Apply active division middleware globally
		se.Router.BindFunc(handlers.ActiveDivisionMiddleware(app))

		// ── Division activation ──────────────────────────────────
		se.Router.POST("/api/divisions/{id}/activate", handlers.HandleDivisionActivate(app))
		se.Router.POST("/api/divisions/deactivate", handlers.HandleDivisionDeactivate(app))

		// ── Reference data (cascading selects + catalog) ─────────
		se.Router.GET("/api/ref/divisions", handlers.HandleDivisionList(app))
		se.Router.GET("/api/ref/depots", handlers.HandleDepotList(app))
		se.Router.GET("/api/ref/bus-stations", handlers.HandleBusStationList(app))
		se.Router.GET("/api/ref/bus-stands", handlers.HandleBusStandList(app))
		se.Router.GET("/api/ref/products", handlers.HandleProductList(app))
		se.Router.PATCH("/api/ref/products/{id}/price", handlers.HandleProductPriceUpdate(app))

		// ── BOQs ─────────────────────────────────────────────────
		se.Router.POST("/api/boqs", handlers.HandleBOQCreate(app))
		se.Router.GET("/api/boqs", handlers.HandleBOQList(app))
		se.Router.POST("/api/boqs/{id}/transition", handlers.HandleBOQTransition(app))
		se.Router.GET("/api/boqs/{id}/export", handlers.HandleBOQExport(app))

		// ── Installations (BOQ-scoped) ───────────────────────────
		se.Router.POST("/api/boqs/{id}/installations", handlers.HandleInstallationCreate(app))
		se.Router.GET("/api/boqs/{id}/installations", handlers.HandleInstallationList(app))
		se.Router.PATCH("/api/installations/{id}/state", handlers.HandleInstallationStateUpdate(app))

		// BOQ view and delete (after specific /boqs/{id}/* routes)
		se.Router.GET("/api/boqs/{id}", handlers.HandleBOQView(app))
		se.Router.DELETE("/api/boqs/{id}", handlers.HandleBOQDelete(app))

		// ── Polling locations ────────────────────────────────────
		se.Router.GET("/api/locations", handlers.HandleLocationList(app))
		se.Router.POST("/api/locations", handlers.HandleLocationCreate(app))

		// Location import - template, validate, commit, error report
		se.Router.GET("/api/locations/import/template", handlers.HandleLocationImportTemplate(app))
		se.Router.POST("/api/locations/import/validate", handlers.HandleLocationImportValidate(app))
		se.Router.POST("/api/locations/import/commit", handlers.HandleLocationImportCommit(app))
		se.Router.POST("/api/locations/import/errors", handlers.HandleLocationImportErrorReport(app))

		// ── Surveys ──────────────────────────────────────────────
		se.Router.GET("/api/surveys", handlers.HandleSurveyList(app))
		se.Router.POST("/api/surveys", handlers.HandleSurveyCreate(app))

		// ── Dashboard ────────────────────────────────────────────
		se.Router.GET("/api/dashboard", handlers.HandleDashboard(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
