package handlers

import (
	"github.com/iota-uz/go-i18n/v2/i18n"
	"github.com/pocketbase/pocketbase/core"
	"github.com/sirupsen/logrus"

	"costconsole/collections"
	"costconsole/config"
	"costconsole/services"
	"costconsole/sqlexec"
)

// Env carries the dependencies shared by every handler.
type Env struct {
	App      core.App
	Config   *config.Configuration
	Exec     sqlexec.Executor
	Importer services.MasterDataImporter
	Data     *services.MasterData
	Sessions *SessionStore
	Bundle   *i18n.Bundle
	Log      logrus.FieldLogger
}

// NewEnv wires the master-data reader and session store from cfg.
func NewEnv(app core.App, cfg *config.Configuration, exec sqlexec.Executor, importer services.MasterDataImporter, bundle *i18n.Bundle, log logrus.FieldLogger) *Env {
	env := &Env{
		App:      app,
		Config:   cfg,
		Exec:     exec,
		Importer: importer,
		Bundle:   bundle,
		Log:      log,
	}
	env.Data = &services.MasterData{
		Exec:     exec,
		Database: cfg.Databases.PCM,
		PageSize: cfg.PageSize,
		Seq:      services.NewRequestSequence(),
		Log:      log,
	}
	env.Sessions = NewSessionStore(cfg.SessionMax, cfg.SessionTTL, env.costFetcher(), log, func(id string) {
		env.Data.Seq.ForgetPrefix(gridKeyPrefix(id))
	})
	return env
}

func (env *Env) costFetcher() services.ChildFetcher {
	return services.CostTreeFetcher{Exec: env.Exec, Database: env.Config.Databases.PCM}
}

func (env *Env) logger(component string) logrus.FieldLogger {
	log := env.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("component", component)
}

// lookupGUID resolves import configuration GUIDs from the config collection.
func (env *Env) lookupGUID(class, name string) (string, error) {
	return collections.FindConfigGUID(env.App, class, name)
}
