package main

import (
	"context"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"costconsole/collections"
	"costconsole/config"
	"costconsole/handlers"
	"costconsole/locales"
	"costconsole/sqlexec"
)

func main() {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		logrus.Fatalf("configuration: %v", err)
	}
	logger := cfg.NewLogger()

	httpClient, err := sqlexec.NewHTTPClient(context.Background(), cfg.APIBase(), sqlexec.Credentials{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		User:         cfg.OAuth.User,
		Password:     cfg.OAuth.Password,
	}, cfg.HTTPTimeout)
	if err != nil {
		logger.WithError(err).Warn("could not obtain a proxy token, continuing without one")
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	client := sqlexec.NewClient(cfg.ServerURL, cfg.APIBase(), httpClient, logger)

	app := pocketbase.New()
	env := handlers.NewEnv(app, cfg, client, client, locales.NewBundle(), logger)

	registerCommands(app, env)

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app, cfg.AdminPassword, nil); err != nil {
			logger.WithError(err).Warn("seed data failed")
		}
		if err := collections.MigrateConfigGUIDs(app); err != nil {
			logger.WithError(err).Warn("config GUID migration failed")
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.GET("/static/{path...}", apis.Static(os.DirFS("./static"), false))

		if cfg.Prometheus.Enabled {
			se.Router.GET(cfg.Prometheus.Path, apis.WrapStdHandler(promhttp.Handler()))
		}

		se.Router.BindFunc(handlers.LanguageMiddleware(env))

		se.Router.POST("/lang", handlers.HandleLanguage(env))

		// ── Cost explorer ────────────────────────────────────────
		se.Router.GET("/cost", handlers.HandleCostTree(env))
		se.Router.POST("/cost/toggle", handlers.HandleCostToggle(env))
		se.Router.POST("/cost/refresh", handlers.HandleCostRefresh(env))
		se.Router.GET("/cost/browse", handlers.HandleCostBrowse(env))
		se.Router.POST("/cost/browse/enter", handlers.HandleCostBrowseEnter(env))
		se.Router.POST("/cost/browse/up", handlers.HandleCostBrowseUp(env))
		se.Router.POST("/cost/browse/jump", handlers.HandleCostBrowseJump(env))
		se.Router.POST("/cost/browse/refresh", handlers.HandleCostBrowseRefresh(env))

		// ── Master-data grids ────────────────────────────────────
		se.Router.GET("/materials", handlers.HandleMaterialList(env))
		se.Router.GET("/materials/export", handlers.HandleMaterialExport(env))
		se.Router.GET("/machines", handlers.HandleMachineList(env))
		se.Router.GET("/machines/export", handlers.HandleMachineExport(env))
		se.Router.GET("/prices", handlers.HandlePriceList(env))
		se.Router.GET("/prices/export", handlers.HandlePriceExport(env))

		// ── Plants / regions ─────────────────────────────────────
		se.Router.GET("/plants", handlers.HandlePlantList(env))
		se.Router.GET("/plants/export", handlers.HandlePlantExport(env))
		se.Router.GET("/plants/template", handlers.HandlePlantTemplate(env))
		se.Router.POST("/plants/import", handlers.HandlePlantImport(env))
		se.Router.POST("/plants/import/sheet", handlers.HandlePlantImportSheet(env))
		se.Router.POST("/plants/import/commit", handlers.HandlePlantImportCommit(env))

		// ── Config entries ───────────────────────────────────────
		se.Router.GET("/config", handlers.HandleConfigList(env))
		se.Router.POST("/config", handlers.HandleConfigSave(env))
		se.Router.GET("/config/{id}/edit", handlers.HandleConfigEdit(env))
		se.Router.POST("/config/{id}", handlers.HandleConfigSave(env))
		se.Router.DELETE("/config/{id}", handlers.HandleConfigDelete(env))

		// ── Console users (export routes before {id}) ────────────
		se.Router.GET("/users", handlers.HandleUserList(env))
		se.Router.GET("/users/export", handlers.HandleUserExport(env))
		se.Router.GET("/users/access-log/export", handlers.HandleAccessLogExport(env))
		se.Router.POST("/users", handlers.HandleUserSave(env))
		se.Router.GET("/users/{id}/edit", handlers.HandleUserEdit(env))
		se.Router.GET("/users/{id}/history", handlers.HandleUserHistory(env))
		se.Router.POST("/users/{id}", handlers.HandleUserSave(env))
		se.Router.DELETE("/users/{id}", handlers.HandleUserDelete(env))

		// Redirect home to the cost explorer
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/cost")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		logger.Fatal(err)
	}
}
