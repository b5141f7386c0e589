package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"admissions/internal/config"
	"admissions/internal/domain/application"
	"admissions/internal/domain/user"
	"admissions/internal/http/handlers"
	middlewarex "admissions/internal/http/middleware"
	appsvc "admissions/internal/services/application"
	"admissions/internal/services/audit"
	"admissions/internal/services/auth"
	bookingsvc "admissions/internal/services/booking"
	paymentsvc "admissions/internal/services/payment"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config       config.Cfg
	Payments     *paymentsvc.Service
	Applications *appsvc.Service
	Bookings     *bookingsvc.Service
	Auth         *auth.Service
	Audit        *audit.Recorder

	// optional
	Limiter middlewarex.Limiter
	DB      Pinger
}

// NewRouter wires every route onto a chi router
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Sec.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.Limiter != nil {
		r.Use(middlewarex.RateLimit(deps.Limiter))
	}

	r.Get("/health", health(deps.DB))

	authn := middlewarex.Authenticate(deps.Auth)
	adminOnly := middlewarex.RequireRole(user.RoleAdmin)

	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/create-order", handlers.CreateOrder(deps.Payments))
		r.Post("/verify", handlers.VerifyPayment(deps.Payments))
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", handlers.RegisterUser(deps.Auth))
		r.Post("/login", handlers.LoginUser(deps.Auth))
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/logout", handlers.Logout(deps.Auth))
			r.Get("/getprofile", handlers.Profile(deps.Auth))
			r.Put("/updateprofile", handlers.UpdateProfile(deps.Auth))
			r.Put("/updatepassword", handlers.UpdatePassword(deps.Auth))
		})

		r.Route("/ug-applications", applicationRoutes(deps.Applications, application.KindUG, authn, adminOnly))
		r.Route("/pg-applications", applicationRoutes(deps.Applications, application.KindPG, authn, adminOnly))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/register", handlers.RegisterAdmin(deps.Auth))
		r.Post("/login", handlers.LoginAdmin(deps.Auth))
		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Get("/profile", handlers.Profile(deps.Auth))
			r.Get("/payments/{orderId}/events", handlers.PaymentHistory(deps.Audit))
		})
	})

	r.Route("/booking", func(r chi.Router) {
		r.Post("/create", handlers.CreateBooking(deps.Bookings))
		r.With(authn, adminOnly).Get("/allbooking", handlers.ListBookings(deps.Bookings))
	})

	return r
}

// applicationRoutes mounts one application kind: public create, admin for
// everything else ("createug"/"getug" and "createpg"/"getpg").
func applicationRoutes(svc *appsvc.Service, kind application.Kind, authn, adminOnly func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/create"+string(kind), handlers.CreateApplication(svc, kind))
		r.Group(func(r chi.Router) {
			r.Use(authn, adminOnly)
			r.Get("/get"+string(kind), handlers.ListApplications(svc, kind))
			r.Get("/stats/overview", handlers.ApplicationStats(svc, kind))
			r.Get("/{id}", handlers.GetApplication(svc, kind))
			r.Put("/{id}", handlers.UpdateApplication(svc, kind))
			r.Delete("/{id}", handlers.DeleteApplication(svc, kind))
		})
	}
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  status,
			"message": "Admissions API running",
		})
	}
}
