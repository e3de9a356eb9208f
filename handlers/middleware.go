package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type contextKey string

// ActiveDivisionKey stores the coordinator's currently scoped division.
const ActiveDivisionKey contextKey = "activeDivision"

// ActiveDivision is the division a coordinator has scoped their session to.
// List endpoints default-filter to it when no explicit division is given.
type ActiveDivision struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetActiveDivision extracts the active division from the request context.
func GetActiveDivision(r *http.Request) *ActiveDivision {
	if val, ok := r.Context().Value(ActiveDivisionKey).(*ActiveDivision); ok {
		return val
	}
	return nil
}

// ActiveDivisionMiddleware reads the "active_division" cookie, loads the
// division record, and stores it in the request context so list handlers
// can scope their queries. A cookie pointing at a deleted division is
// cleared rather than failing the request.
func ActiveDivisionMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var active *ActiveDivision

		cookie, err := e.Request.Cookie("active_division")
		if err == nil && cookie.Value != "" {
			rec, err := app.FindRecordById("divisions", cookie.Value)
			if err == nil {
				active = &ActiveDivision{
					ID:   rec.Id,
					Name: rec.GetString("name"),
				}
			} else {
				log.Printf("middleware: active division %s not found, clearing cookie", cookie.Value)
				http.SetCookie(e.Response, &http.Cookie{
					Name:   "active_division",
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
			}
		}

		ctx := context.WithValue(e.Request.Context(), ActiveDivisionKey, active)
		e.Request = e.Request.WithContext(ctx)

		return e.Next()
	}
}

// HandleDivisionActivate sets the active-division cookie.
// Route: POST /api/divisions/{id}/activate
func HandleDivisionActivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		divisionID := e.Request.PathValue("id")

		rec, err := app.FindRecordById("divisions", divisionID)
		if err != nil {
			return APIError(e, http.StatusNotFound, "not_found", "Division not found", nil)
		}

		http.SetCookie(e.Response, &http.Cookie{
			Name:     "active_division",
			Value:    rec.Id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		return OKData(e, ActiveDivision{ID: rec.Id, Name: rec.GetString("name")})
	}
}

// HandleDivisionDeactivate clears the active-division cookie.
// Route: POST /api/divisions/deactivate
func HandleDivisionDeactivate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		http.SetCookie(e.Response, &http.Cookie{
			Name:   "active_division",
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		return OKData(e, nil)
	}
}
