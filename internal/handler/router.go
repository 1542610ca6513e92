package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/service"
	"github.com/BuzzLyutic/tasky/pkg/respond"
)

type Services struct {
	Tasks    *service.TaskService
	Notes    *service.NoteService
	Lists    *service.ListService
	Calendar *service.CalendarService
	Auth     *service.AuthService
}

// NewRouter собирает все маршруты API.
func NewRouter(s Services, logger *zap.Logger, corsOrigins []string) http.Handler {
	tasks := NewTaskHandler(s.Tasks, logger)
	notes := NewNoteHandler(s.Notes, logger)
	lists := NewListHandler(s.Lists, logger)
	calendar := NewCalendarHandler(s.Calendar, logger)
	auth := NewAuthHandler(s.Auth, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders: []string{"Location"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth", auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(s.Auth, logger))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", tasks.List)
				r.Post("/", tasks.Create)
				r.Put("/reorder", tasks.Reorder)
				r.Get("/{id}", tasks.Get)
				r.Patch("/{id}", tasks.Update)
				r.Delete("/{id}", tasks.Delete)
			})
			r.Get("/stats", tasks.Stats)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", notes.List)
				r.Post("/", notes.Create)
				r.Patch("/{id}", notes.Update)
				r.Delete("/{id}", notes.Delete)
			})

			r.Route("/lists", func(r chi.Router) {
				r.Get("/", lists.List)
				r.Post("/", lists.Create)
				r.Patch("/{id}", lists.Rename)
				r.Delete("/{id}", lists.Delete)
			})

			r.Get("/calendar", calendar.Month)
		})
	})

	return r
}

// AccessLog пишет одну строку zap на каждый запрос.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
