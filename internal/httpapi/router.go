package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"makerspace/internal/adminaction"
	"makerspace/internal/api"
	"makerspace/internal/auth"
	"makerspace/internal/course"
	"makerspace/internal/events"
	"makerspace/internal/machine"
	"makerspace/internal/reservation"
	"makerspace/internal/store"
	"makerspace/pkg/config"
	"makerspace/pkg/metrics"
)

type Dependencies struct {
	Cfg     config.Config
	Store   store.Set
	Tokens  *auth.Tokens
	Events  *events.Emitter
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID)
	r.Use(api.RequestLogger(deps.Log, deps.Metrics))
	r.Use(api.Recoverer)
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAgeSeconds:  600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Store.Ping != nil {
			if err := deps.Store.Ping(r.Context()); err != nil {
				api.Logger(r.Context()).WithError(err).Warn("store not ready")
				api.WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "store unavailable")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	st := deps.Store
	authHandlers := auth.Handlers{Service: auth.Service{
		Users:  st.Users,
		Tokens: deps.Tokens,
		Log:    deps.Log,
	}}
	machineHandlers := machine.Handlers{Machines: st.Machines}
	courseHandlers := course.Handlers{Service: course.Service{
		Courses: st.Courses,
		Users:   st.Users,
		Audit:   st.Audit,
		Events:  deps.Events,
		Metrics: deps.Metrics,
		Log:     deps.Log,
	}}
	reservationHandlers := reservation.Handlers{Service: reservation.Service{
		Users:    st.Users,
		Machines: st.Machines,
		Bookings: st.Bookings,
		Events:   deps.Events,
		Metrics:  deps.Metrics,
		Log:      deps.Log,
	}}
	adminHandlers := adminaction.Handlers{
		Mutator: adminaction.Mutator{
			Users:    st.Users,
			Machines: st.Machines,
			Bookings: st.Bookings,
			Audit:    st.Audit,
			Events:   deps.Events,
			Metrics:  deps.Metrics,
			Log:      deps.Log,
		},
		Users:    st.Users,
		Bookings: st.Bookings,
		Audit:    st.Audit,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/login", authHandlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(api.Authenticate(deps.Tokens, st.Users))

			r.Get("/me", authHandlers.Me)
			r.Patch("/me", authHandlers.PatchMe)
			r.Get("/me/attempts", courseHandlers.MyAttempts)

			r.Get("/machines", machineHandlers.List)
			r.Get("/machines/{id}", machineHandlers.Get)
			r.Get("/machines/{id}/eligibility", reservationHandlers.Eligibility)

			r.Get("/courses", courseHandlers.List)
			r.Get("/courses/{id}", courseHandlers.Get)
			r.Post("/courses/{id}/quiz", courseHandlers.SubmitQuiz)

			r.Get("/bookings/mine", reservationHandlers.Mine)
			r.Post("/bookings", reservationHandlers.Create)
			r.Post("/bookings/{id}/cancel", reservationHandlers.Cancel)

			r.Route("/admin", func(r chi.Router) {
				r.Use(api.RequireAdmin)

				r.Get("/users", adminHandlers.ListUsers)
				r.Post("/users/{id}/certifications", adminHandlers.GrantCertification)
				r.Patch("/users/{id}/active", adminHandlers.SetUserActive)

				r.Post("/machines", adminHandlers.CreateMachine)
				r.Patch("/machines/{id}/status", adminHandlers.SetMachineStatus)
				r.Get("/machines/{id}/conflicts", adminHandlers.MachineConflicts)

				r.Get("/bookings", adminHandlers.ListBookings)
				r.Patch("/bookings/{id}/status", adminHandlers.SetBookingStatus)

				r.Get("/audit/{entityType}/{id}", adminHandlers.AuditTrail)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	return r
}
