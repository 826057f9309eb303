package server

import (
	"net/http"
	"time"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/api/service"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = util.NewLogger("httpd")

type route struct {
	Methods     []string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// HTTPd wraps an http.Server and adds the root router
type HTTPd struct {
	*http.Server
	router  *mux.Router
	version string
}

var _ service.Httpd = (*HTTPd)(nil)

// Services are the backends exposed by the HTTP server. Audit and Logsheet may be nil.
type Services struct {
	Calculator  Calculator
	Preferences Preferences
	Audit       api.AuditReader
	Logsheet    Logsheet
}

// NewHTTPd creates the HTTP server. Asynchronous results are published to out
// and distributed to websocket clients by the hub.
func NewHTTPd(addr, version string, svc Services, hub *SocketHub, out chan<- util.Param) *HTTPd {
	router := mux.NewRouter().StrictSlash(true)

	// websocket
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWebsocket(hub, w, r)
	})

	// metrics
	router.Handle("/metrics", promhttp.Handler())

	// api
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(jsonHandler)

	routes := map[string]route{
		"health":         {[]string{"GET"}, "/health", healthHandler()},
		"mvar":           {[]string{"POST", "OPTIONS"}, "/mvar", mvarHandler(svc.Calculator)},
		"consumption":    {[]string{"POST", "OPTIONS"}, "/consumption", consumptionHandler(svc.Calculator)},
		"audit":          {[]string{"GET"}, "/audit", auditHandler(svc.Audit)},
		"theme":          {[]string{"GET"}, "/theme", themeHandler(svc.Preferences)},
		"settheme":       {[]string{"POST", "OPTIONS"}, "/theme/{theme:[a-z]+}", setThemeHandler(svc.Preferences)},
		"logsheet":       {[]string{"POST", "OPTIONS"}, "/logsheet", logsheetHandler(svc.Logsheet, out)},
		"logsheetstatus": {[]string{"GET"}, "/logsheet/status", logsheetStatusHandler(svc.Logsheet)},
	}

	for _, r := range routes {
		apiRouter.Methods(r.Methods...).Path(r.Pattern).Handler(r.HandlerFunc)
	}

	handler := handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
	)(router)

	srv := &HTTPd{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     log.ERROR,
		},
		router:  router,
		version: version,
	}
	srv.SetKeepAlivesEnabled(true)

	return srv
}

// jsonHandler sets the response content type for api routes
func jsonHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

// Router returns the main router
func (s *HTTPd) Router() *mux.Router {
	return s.router
}

// Addr returns the listening address
func (s *HTTPd) Addr() string {
	return s.Server.Addr
}

// Version returns the server version
func (s *HTTPd) Version() string {
	return s.version
}
