package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskflow/taskflow-api/internal/auth"
)

// Handlers bundles every HTTP surface the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Tasks    *TaskHandler
	Views    *ViewHandler
	Focus    *FocusHandler
	Suggest  *SuggestHandler
	Calendar *CalendarHandler
	Game     *GameHandler
	JWT      *auth.JWTManager
}

// NewRouter assembles the API. Everything under /api except the auth
// endpoints requires a bearer token.
func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.SignUp)
		r.Post("/signin", h.Auth.SignIn)
		r.Post("/password-reset", h.Auth.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.Auth.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.JWT))
			r.Post("/signout", h.Auth.SignOut)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWT))

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", h.Tasks.List)
			r.Post("/", h.Tasks.Create)
			r.Post("/reorder", h.Tasks.Reorder)
			r.Get("/{id}", h.Tasks.Get)
			r.Put("/{id}", h.Tasks.Update)
			r.Delete("/{id}", h.Tasks.Delete)
			r.Post("/{id}/toggle", h.Tasks.Toggle)
			r.Post("/{id}/quadrant", h.Tasks.Move)
			r.Post("/{id}/share", h.Tasks.Share)
			r.Delete("/{id}/share/{uid}", h.Tasks.Unshare)
			r.Post("/{id}/calendar", h.Calendar.Export)
		})

		r.Route("/api/views", func(r chi.Router) {
			r.Get("/kanban", h.Views.Kanban)
			r.Get("/matrix", h.Views.Matrix)
			r.Get("/calendar", h.Views.Calendar)
			r.Get("/analytics", h.Views.Analytics)
		})

		r.Route("/api/focus", func(r chi.Router) {
			r.Get("/", h.Focus.State)
			r.Post("/start", h.Focus.Start)
			r.Post("/pause", h.Focus.Pause)
			r.Post("/resume", h.Focus.Resume)
			r.Post("/reset", h.Focus.Reset)
			r.Post("/stop", h.Focus.Stop)
		})

		r.Route("/api/calendar", func(r chi.Router) {
			r.Get("/auth-url", h.Calendar.AuthURL)
			r.Get("/status", h.Calendar.Status)
			r.Post("/connect", h.Calendar.Connect)
			r.Delete("/connect", h.Calendar.Disconnect)
		})

		r.Post("/api/suggestions", h.Suggest.Suggest)
		r.Get("/api/game/summary", h.Game.Summary)
	})

	return r
}
