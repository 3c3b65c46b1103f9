package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/traveltalk/server/internal/api/service"
	"github.com/traveltalk/server/internal/api/store"
	"github.com/traveltalk/server/internal/api/upstream/azurespeech"
	"github.com/traveltalk/server/internal/api/upstream/gemini"
	"github.com/traveltalk/server/pkg/httpx"
	"github.com/traveltalk/server/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	adminSecret  string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	metrics *Metrics

	AdmissionService  *service.AdmissionService
	SessionService    *service.SessionService
	AdminService      *service.AdminService
	CodeService       *service.CodeService
	UserService       *service.UserService
	StatsService      *service.StatsService
	HistoryService    *service.HistoryService
	PhrasebookService *service.PhrasebookService

	Gemini *gemini.Client
	Azure  *azurespeech.Client
}

func NewRouter(
	adminSecret, buildVersion string,
	st store.Store,
	metrics *Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		adminSecret:  adminSecret,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      metrics,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerHistory()
	r.registerPhrasebook()
	r.registerProxies()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware
// chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /auth/login", &LoginHandler{
		Admission: r.AdmissionService,
		Metrics:   r.metrics,
	})
	r.Mux.Handle("POST /auth/logout", &LogoutHandler{Sessions: r.SessionService})
	r.Mux.Handle("POST /auth/validate", &ValidateHandler{Sessions: r.SessionService})
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("POST /admin/login", &AdminLoginHandler{Admin: r.AdminService})
	r.Mux.Handle("POST /admin/logout", &AdminLogoutHandler{Admin: r.AdminService})
	r.Mux.Handle("POST /admin/validate", &AdminValidateHandler{Admin: r.AdminService})

	// Code management answers to the shared secret only.
	secretOnly := requireAdminSecret(r.adminSecret)
	codes := &CodesHandler{Codes: r.CodeService}
	r.Mux.Handle("GET /admin/codes", httpx.Chain(http.HandlerFunc(codes.List), secretOnly))
	r.Mux.Handle("POST /admin/codes", httpx.Chain(http.HandlerFunc(codes.Create), secretOnly))
	r.Mux.Handle("PATCH /admin/codes", httpx.Chain(http.HandlerFunc(codes.Update), secretOnly))
	r.Mux.Handle("DELETE /admin/codes", httpx.Chain(http.HandlerFunc(codes.Delete), secretOnly))

	// User management and stats accept the secret or a live admin token,
	// so the dashboard works with either credential.
	secretOrToken := requireAdmin(r.adminSecret, r.AdminService)
	users := &UsersHandler{Users: r.UserService}
	r.Mux.Handle("GET /admin/users", httpx.Chain(http.HandlerFunc(users.List), secretOrToken))
	r.Mux.Handle("PATCH /admin/users", httpx.Chain(http.HandlerFunc(users.Rename), secretOrToken))
	r.Mux.Handle("DELETE /admin/users", httpx.Chain(http.HandlerFunc(users.Delete), secretOrToken))

	r.Mux.Handle("GET /admin/stats",
		httpx.Chain(&StatsHandler{Stats: r.StatsService}, secretOrToken))
}

func (r *Router) registerHistory() {
	auth := requireSession(r.SessionService)
	history := &HistoryHandler{History: r.HistoryService}

	r.Mux.Handle("POST /history/save", httpx.Chain(http.HandlerFunc(history.Save), auth))
	r.Mux.Handle("GET /history/list", httpx.Chain(http.HandlerFunc(history.List), auth))
	r.Mux.Handle("POST /history/dialog-start", httpx.Chain(http.HandlerFunc(history.DialogStart), auth))
	r.Mux.Handle("POST /history/dialog-message", httpx.Chain(http.HandlerFunc(history.DialogMessages), auth))
	r.Mux.Handle("GET /history/dialogs", httpx.Chain(http.HandlerFunc(history.Dialogs), auth))
}

func (r *Router) registerPhrasebook() {
	auth := requireSession(r.SessionService)
	phrasebook := &PhrasebookHandler{Phrasebook: r.PhrasebookService}

	r.Mux.Handle("POST /phrasebook/add", httpx.Chain(http.HandlerFunc(phrasebook.Add), auth))
	r.Mux.Handle("GET /phrasebook/list", httpx.Chain(http.HandlerFunc(phrasebook.List), auth))
	r.Mux.Handle("POST /phrasebook/delete", httpx.Chain(http.HandlerFunc(phrasebook.Delete), auth))
}

func (r *Router) registerProxies() {
	auth := requireSession(r.SessionService)

	r.Mux.Handle("POST /translate", &TranslateHandler{Gemini: r.Gemini, Metrics: r.metrics})

	tts := &TTSHandler{Gemini: r.Gemini, Metrics: r.metrics}
	r.Mux.Handle("GET /tts", tts)
	r.Mux.Handle("POST /tts", tts)

	r.Mux.Handle("GET /speech-token",
		httpx.Chain(&SpeechTokenHandler{Azure: r.Azure, Metrics: r.metrics}, auth))
	r.Mux.Handle("POST /pronunciation",
		httpx.Chain(&PronunciationHandler{Azure: r.Azure, Metrics: r.metrics}, auth))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
