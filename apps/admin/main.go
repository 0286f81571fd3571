package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/storage/kv/file"
	"github.com/trezcool/shule/storage/kv/inmem"
	"github.com/trezcool/shule/storage/kv/postgres"
	"github.com/trezcool/shule/storage/kv/redis"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	kv, db, err := openKV(conf)
	errAndDie(err)

	validate, translator := core.NewValidator()
	core.InitValidators(validate, translator)
	student.RegisterValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db,
		studentSvc: student.NewService(kv),
		sessions:   session.NewStore(kv, conf),
		auth:       auth.NewAuthenticator(conf),
		validate:   validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

// openKV opens the configured backend. The *sql.DB is non-nil only for the
// postgres backend; the migrate command requires it.
func openKV(conf *core.Config) (core.KVStore, *sql.DB, error) {
	switch conf.Storage.Backend {
	case "inmem":
		return memkv.NewStore(), nil, nil
	case "redis":
		kv, err := rediskv.NewStore(conf)
		return kv, nil, err
	case "postgres":
		db, err := pgkv.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		return pgkv.NewStore(db), db.DB, nil
	default: // file
		kv, err := filekv.NewStore(conf.Storage.DataDir)
		return kv, nil, err
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
