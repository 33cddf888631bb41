package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sentinela-io/sentinela/server/fanout"
	"github.com/sentinela-io/sentinela/server/logger"
	"github.com/sentinela-io/sentinela/server/models"
	"github.com/sentinela-io/sentinela/server/twilio"
	"github.com/sentinela-io/sentinela/server/work"
	"github.com/sentinela-io/sentinela/server/ws"
	"github.com/spf13/viper"
)

var logg = logger.NewLogger()

// app holds the explicitly-constructed handles every request handler
// needs - no ambient singletons beyond the models package db.
type app struct {
	jwtSecret    string
	fanoutEngine *fanout.Engine
	hub          *ws.Hub
}

// Start boots the sentinela server: db migration, worker pool,
// realtime hub, HTTP routes & graceful shutdown.
func Start(config *viper.Viper, devMode bool) {
	serverConfig := parseServerConfig(config)
	configDir := configDirectory(devMode)

	if sqliteBackupEnabled(serverConfig) {
		restoreDbFromBackup(serverConfig, configDir)
	}
	fatalOnError(models.AutoMigrate(serverConfig.Sqlite.PassPhrase, configDir))

	hub := ws.NewHub()
	workerPool := work.NewWorkerAdapter(serverConfig.Sentinela.Cron.TimeZone)
	smsClient := twilio.NewClient(serverConfig.Twilio, devMode)
	fanoutEngine := fanout.NewEngine(hub, workerPool)

	registerJobHandlers(workerPool, smsClient, serverConfig, configDir)
	enqueueJobs(workerPool, serverConfig)
	workerPool.Start()

	sentinelaApp := &app{
		jwtSecret:    serverConfig.Sentinela.JwtSecret,
		fanoutEngine: fanoutEngine,
		hub:          hub,
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", serverConfig.Sentinela.Listener.Port),
		Handler: newRouter(sentinelaApp),
	}
	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerPool, hub, server)
}

func newRouter(sentinelaApp *app) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.Handle("/ws", ws.NewHandler(sentinelaApp.hub, sentinelaApp.jwtSecret))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(sentinelaApp.initialContextMiddleware)

	api.HandleFunc("/auth/register", sentinelaApp.register).Methods("POST")
	api.HandleFunc("/auth/login", sentinelaApp.logIn).Methods("POST")
	api.HandleFunc("/users", sentinelaApp.findUserByEmail).Methods("GET")

	api.HandleFunc("/incidents", sentinelaApp.listIncidents).Methods("GET")
	api.HandleFunc("/incidents", sentinelaApp.createIncident).Methods("POST")
	api.HandleFunc("/incidents/{id}", sentinelaApp.findIncident).Methods("GET")
	api.HandleFunc("/incidents/{id}", sentinelaApp.updateIncident).Methods("PUT")
	api.HandleFunc("/incidents/{id}", sentinelaApp.deleteIncident).Methods("DELETE")

	api.HandleFunc("/contact", sentinelaApp.createMessage).Methods("POST")
	api.HandleFunc("/messages", sentinelaApp.listMessages).Methods("GET")

	protected := api.NewRoute().Subrouter()
	protected.Use(sentinelaApp.protectedRouteMiddleware)

	protected.HandleFunc("/emergency-contacts", sentinelaApp.listEmergencyContacts).Methods("GET")
	protected.HandleFunc("/emergency-contacts", sentinelaApp.addEmergencyContact).Methods("POST")
	protected.HandleFunc("/emergency-contacts/{contactId}", sentinelaApp.removeEmergencyContact).Methods("DELETE")

	protected.HandleFunc("/notifications", sentinelaApp.listNotifications).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", sentinelaApp.markNotificationRead).Methods("PUT")

	protected.HandleFunc("/panic-alert", sentinelaApp.triggerPanicAlert).Methods("POST")

	return router
}

func serve(server *http.Server) {
	logg.Infof("Sentinela server is listening on %v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, hub *ws.Hub, server *http.Server) {
	workerPool.Stop()
	hub.Close()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Sentinela server shutdown failed: %+s", err)
	}

	logg.Infof("Sentinela server stopped properly")
}
