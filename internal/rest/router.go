package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/context"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/qredo/admin-agent/internal/api"
	"github.com/qredo/admin-agent/internal/config"
	"github.com/qredo/admin-agent/internal/defs"
	"github.com/qredo/admin-agent/internal/service"
)

const (
	PathHealthcheckVersion = "/healthcheck/version"
	PathHealthCheckConfig  = "/healthcheck/config"
	PathHealthCheckStatus  = "/healthcheck/status"
	PathActions            = "/client/actions"
	PathAction             = "/client/action/{action_id}"
	PathMetrics            = "/metrics"
)

type route struct {
	path    string
	method  string
	handler appHandlerFunc
}

type Router struct {
	log       *zap.SugaredLogger
	config    config.Config
	handler   http.Handler
	subRouter *mux.Router
	server    *http.Server

	middleware *Middleware
	version    api.Version
	registry   *prometheus.Registry

	agentService  service.AgentService
	actionService service.ActionService
}

func NewRouter(log *zap.SugaredLogger, config config.Config, version api.Version, registry *prometheus.Registry, service service.AgentService, actionService service.ActionService) *Router {
	app := &Router{
		log:           log,
		middleware:    NewMiddleware(log, config.HTTP.LogAllRequests),
		subRouter:     mux.NewRouter().PathPrefix(defs.PathPrefix).Subrouter(),
		version:       version,
		registry:      registry,
		config:        config,
		agentService:  service,
		actionService: actionService,
	}

	app.setRoutes()
	app.server = &http.Server{
		Addr:    config.HTTP.Addr,
		Handler: context.ClearHandler(app.handler),
	}

	return app
}

// setRoutes set all handlers
func (a *Router) setRoutes() {
	routes := []route{
		{PathHealthcheckVersion, http.MethodGet, a.HealthCheckVersion},
		{PathHealthCheckConfig, http.MethodGet, a.HealthCheckConfig},
		{PathHealthCheckStatus, http.MethodGet, a.HealthCheckStatus},
		{PathActions, http.MethodGet, a.PendingActions},
		{PathAction, http.MethodPut, a.ActionHandle},
		{PathAction, http.MethodDelete, a.ActionDismiss},
	}

	for _, route := range routes {
		a.subRouter.Handle(route.path, a.middleware.sessionMiddleware(route.handler)).Methods(route.method)
	}

	if a.registry != nil {
		a.subRouter.Handle(PathMetrics, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	a.subRouter.Use(a.middleware.loggingMiddleware)

	a.printRoutes()
	a.setupCORS()
}

// Start starts the agent service and serves the API until the listener fails or Stop is called
func (a *Router) Start() error {
	if err := a.agentService.Start(); err != nil {
		return errors.Wrap(err, "start the agent service")
	}

	errChan := make(chan error)
	go a.StartHTTPListener(errChan)

	err := <-errChan
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartHTTPListener starts the HTTP listener
func (a *Router) StartHTTPListener(errChan chan error) {
	a.log.Infof("CORS policy: %s", strings.Join(a.config.HTTP.CORSAllowOrigins, ","))
	a.log.Infof("Starting listener on %v", a.config.HTTP.Addr)

	if a.config.HTTP.TLS.Enabled {
		a.log.Info("Start listening on HTTPS")
		errChan <- a.server.ListenAndServeTLS(a.config.HTTP.TLS.CertFile, a.config.HTTP.TLS.KeyFile)
	} else {
		a.log.Info("Start listening on HTTP")
		errChan <- a.server.ListenAndServe()
	}
}

// Stop shuts down the admin agent
func (a *Router) Stop() {
	a.agentService.Stop()

	if err := a.server.Close(); err != nil {
		a.log.Errorf("failed to close the http server, err: %v", err)
	}
}

func (a *Router) setupCORS() {
	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{
			"Content-Type",
			"X-Requested-With",
			HeaderTraceID}),
		handlers.AllowedOrigins(a.config.HTTP.CORSAllowOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet,
			http.MethodPut,
			http.MethodDelete,
			http.MethodHead}),
		handlers.AllowCredentials(),
	)

	a.handler = cors(a.subRouter)
}

func (a Router) printRoutes() {
	if err := a.subRouter.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		if tpl, err := route.GetPathTemplate(); err == nil {
			if met, err := route.GetMethods(); err == nil {
				for _, m := range met {
					a.log.Debugf("Registered handler %v %v", m, tpl)
				}
			}
		}
		return nil
	}); err != nil {
		panic(err)
	}
}
