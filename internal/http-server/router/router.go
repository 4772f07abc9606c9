package router

import (
	"net/http"
	"strings"

	"wishboard/internal/http-server/handler/like"
	"wishboard/internal/http-server/handler/upload"
	"wishboard/internal/http-server/handler/wish"
	"wishboard/internal/http-server/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Handler struct {
	WishHandler   *wish.WishHandler
	LikeHandler   *like.LikeHandler
	UploadHandler *upload.UploadHandler
}

// Static serves stored uploads from a local directory. Empty Dir disables it.
type Static struct {
	Prefix string
	Dir    string
}

func SetupRouter(h *Handler, static Static) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware)

	prefix := "/" + strings.Trim(static.Prefix, "/")

	r.Use(func(next http.Handler) http.Handler {
		logged := middleware.LoggingMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if static.Dir != "" && strings.HasPrefix(r.URL.Path, prefix+"/") {
				next.ServeHTTP(w, r)
				return
			}
			logged.ServeHTTP(w, r)
		})
	})

	if static.Dir != "" {
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", noListing(http.FileServer(http.Dir(static.Dir)))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identify)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/wishes", func(r chi.Router) {
			r.Get("/", h.WishHandler.List)
			r.With(middleware.RequireUser).Post("/", h.WishHandler.Create)
			r.Get("/user/{userId}", h.WishHandler.ListByOwner)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.WishHandler.Get)
				r.With(middleware.RequireUser).Patch("/", h.WishHandler.Update)
				r.With(middleware.RequireUser).Delete("/", h.WishHandler.Delete)

				r.Get("/likes", h.LikeHandler.Count)
				r.Get("/likes/{userId}", h.LikeHandler.IsLiked)
				r.With(middleware.RequireUser).Post("/likes", h.LikeHandler.Toggle)
			})
		})

		r.Get("/profiles/{id}", h.WishHandler.GetProfile)
		r.With(middleware.RequireUser).Put("/profiles/{id}", h.WishHandler.UpsertProfile)
		r.Post("/upload", h.UploadHandler.Upload)
	})

	return r
}

// noListing hides directory indexes; only stored files are served.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
