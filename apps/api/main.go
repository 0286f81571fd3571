package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/kv/file"
	"github.com/trezcool/shule/storage/kv/inmem"
	"github.com/trezcool/shule/storage/kv/postgres"
	"github.com/trezcool/shule/storage/kv/redis"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" - ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	kv, err := openKV(conf)
	if err != nil {
		logger.Fatal("opening storage backend", err)
	}

	// set up services
	studentSvc := student.NewService(kv)
	sessions := session.NewStore(kv, conf)
	authenticator := auth.NewAuthenticator(conf)

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:      conf.Server.Address(),
			Conf:         conf,
			Logger:       logger,
			StudentSvc:   studentSvc,
			SessionStore: sessions,
			Auth:         authenticator,
			Validate:     validate,
			Translator:   translator,
		},
	)
	app.Start()
}

func openKV(conf *core.Config) (core.KVStore, error) {
	switch conf.Storage.Backend {
	case "inmem":
		return memkv.NewStore(), nil
	case "redis":
		return rediskv.NewStore(conf)
	case "postgres":
		db, err := pgkv.Open(conf)
		if err != nil {
			return nil, err
		}
		return pgkv.NewStore(db), nil
	default: // file
		return filekv.NewStore(conf.Storage.DataDir)
	}
}
