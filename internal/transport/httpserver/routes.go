package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/LoreWasTaken/caresync/internal/config"
	"github.com/LoreWasTaken/caresync/internal/transport/httpserver/handler"
	authmw "github.com/LoreWasTaken/caresync/internal/transport/httpserver/middleware"
	"github.com/LoreWasTaken/caresync/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, users authmw.UserProvider, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins).Middleware)

	limiter := authmw.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewAuth(cfg.Auth, users, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Use(limiter.Middleware)

			r.Get("/users/me", handlers.Me)
			r.Patch("/users/me", handlers.UpdateMe)

			r.Get("/medications", handlers.ListMedications)
			r.Post("/medications", handlers.CreateMedication)
			r.Get("/medications/refill-needed", handlers.RefillNeeded)
			r.Get("/medications/schedule", handlers.MedicationSchedule)
			r.Get("/medications/next-doses", handlers.NextDoses)
			r.Post("/medications/import", handlers.ImportPrescription)
			r.Get("/medications/{id}", handlers.GetMedication)
			r.Patch("/medications/{id}", handlers.UpdateMedication)
			r.Delete("/medications/{id}", handlers.DeleteMedication)

			r.Post("/adherence", handlers.RecordIntake)
			r.Post("/adherence/bulk", handlers.BulkRecord)
			r.Get("/adherence", handlers.ListRecords)
			r.Get("/adherence/stats", handlers.AdherenceStats)
			r.Get("/adherence/trends", handlers.AdherenceTrends)
			r.Get("/adherence/report/pdf", handlers.AdherenceReportPDF)
			r.Patch("/adherence/{id}", handlers.UpdateRecord)

			r.Post("/caregivers/invite", handlers.InviteCaregiver)
			r.Post("/caregivers/{id}/accept", handlers.AcceptInvite)
			r.Post("/caregivers/{id}/decline", handlers.DeclineInvite)
			r.Delete("/caregivers/{id}", handlers.RemoveRelationship)
			r.Get("/caregivers/patients", handlers.ListPatients)
			r.Get("/caregivers", handlers.ListCaregivers)
		})
	})

	return r
}
