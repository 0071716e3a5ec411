package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/yusufkecer/hospital-backend/internal/config"
	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/handler"
	"github.com/yusufkecer/hospital-backend/internal/middleware"
	"github.com/yusufkecer/hospital-backend/internal/realtime"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Patients    *handler.PatientHandler
	Appointment *handler.AppointmentHandler
	Fitness     *handler.FitnessHandler
	Messages    *handler.MessageHandler
	Queue       *handler.QueueHandler
	Activity    *handler.ActivityLogHandler
	Insights    *handler.AIInsightHandler
	Hub         *realtime.Hub
}

func newRouter(cfg *config.Config, logger zerolog.Logger, h handlers) *mux.Router {
	loginRL := middleware.NewRateLimiter(5, 15*time.Minute)
	forgotPasswordRL := middleware.NewRateLimiter(3, 60*time.Minute)

	staff := middleware.RequireRole(domain.RoleDoctor, domain.RoleReception)
	admin := middleware.RequireRole(domain.RoleAdmin)
	doctor := middleware.RequireRole(domain.RoleDoctor)
	patient := middleware.RequireRole(domain.RolePatient)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)

	for _, mw := range middleware.Logging(logger) {
		r.Use(mux.MiddlewareFunc(mw))
	}
	r.Use(middleware.Recovery)
	r.Use(middleware.CORSMiddleware(cfg.Origins()))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBytes(maxBodyBytes))

	r.HandleFunc("/api/health", health).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.APIKeyMiddleware(cfg.APIKey))

	api.HandleFunc("/bmi", handler.CalculateBMI).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	api.HandleFunc("/users/register", h.Auth.Register).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/users/login", loginRL.Middleware(http.HandlerFunc(h.Auth.Login))).Methods(http.MethodPost, http.MethodOptions)
	api.Handle("/users/forgot-password", forgotPasswordRL.Middleware(http.HandlerFunc(h.Auth.ForgotPassword))).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/users/reset-password", h.Auth.ResetPassword).Methods(http.MethodPost, http.MethodOptions)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	route := func(path string, hf http.HandlerFunc, guard func(http.Handler) http.Handler, methods ...string) {
		var next http.Handler = hf
		if guard != nil {
			next = guard(next)
		}
		protected.Handle(path, next).Methods(append(methods, http.MethodOptions)...)
	}

	route("/users/me", h.Users.Me, nil, http.MethodGet)
	route("/users/me/dashboard", h.Users.Dashboard, nil, http.MethodGet)
	route("/users", h.Users.GetAll, admin, http.MethodGet)
	route("/users", h.Users.Create, admin, http.MethodPost)
	route("/users/{id:[0-9]+}", h.Users.GetByID, admin, http.MethodGet)
	route("/users/{id:[0-9]+}", h.Users.Delete, admin, http.MethodDelete)

	route("/patients", h.Patients.GetAll, staff, http.MethodGet)
	route("/patients", h.Patients.Create, staff, http.MethodPost)
	route("/patients/me", h.Patients.Me, patient, http.MethodGet)
	route("/patients/{id:[0-9]+}", h.Patients.GetByID, nil, http.MethodGet)
	route("/patients/{id:[0-9]+}", h.Patients.Update, nil, http.MethodPut)
	route("/patients/{id:[0-9]+}", h.Patients.Delete, admin, http.MethodDelete)
	route("/patients/{id:[0-9]+}/bmi", h.Patients.RecordBMI, nil, http.MethodPost)

	route("/appointments", h.Appointment.GetAll, nil, http.MethodGet)
	route("/appointments", h.Appointment.Create, nil, http.MethodPost)
	route("/appointments/{id:[0-9]+}", h.Appointment.GetByID, nil, http.MethodGet)
	route("/appointments/{id:[0-9]+}", h.Appointment.Update, staff, http.MethodPut)
	route("/appointments/{id:[0-9]+}/status", h.Appointment.UpdateStatus, nil, http.MethodPatch)
	route("/appointments/{id:[0-9]+}", h.Appointment.Delete, staff, http.MethodDelete)

	route("/fitness-data", h.Fitness.GetAll, nil, http.MethodGet)
	route("/fitness-data", h.Fitness.Create, nil, http.MethodPost)
	route("/fitness-data/{id:[0-9]+}", h.Fitness.GetByID, nil, http.MethodGet)
	route("/fitness-data/{id:[0-9]+}", h.Fitness.Delete, nil, http.MethodDelete)

	route("/messages/ws", h.Hub.ServeWS, nil, http.MethodGet)
	route("/messages", h.Messages.GetAll, nil, http.MethodGet)
	route("/messages", h.Messages.Create, nil, http.MethodPost)
	route("/messages/{id:[0-9]+}/read", h.Messages.MarkRead, nil, http.MethodPatch)

	route("/queue", h.Queue.GetAll, nil, http.MethodGet)
	route("/queue", h.Queue.Join, nil, http.MethodPost)
	route("/queue/{id:[0-9]+}", h.Queue.GetByID, nil, http.MethodGet)
	route("/queue/{id:[0-9]+}/status", h.Queue.UpdateStatus, staff, http.MethodPatch)
	route("/queue/{id:[0-9]+}", h.Queue.Delete, staff, http.MethodDelete)

	route("/activity-logs", h.Activity.GetAll, admin, http.MethodGet)
	route("/activity-logs", h.Activity.Create, nil, http.MethodPost)

	route("/ai-insights", h.Insights.GetAll, nil, http.MethodGet)
	route("/ai-insights", h.Insights.Create, doctor, http.MethodPost)
	route("/ai-insights/{id}", h.Insights.GetByID, nil, http.MethodGet)
	route("/ai-insights/{id}", h.Insights.Delete, doctor, http.MethodDelete)

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"not found"}`))
}
