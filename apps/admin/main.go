package main

import (
	"os"

	"github.com/labstack/gommon/log"

	"github.com/trezcool/catalog/core"
	"github.com/trezcool/catalog/core/catalog"
	"github.com/trezcool/catalog/core/user"
	logsvc "github.com/trezcool/catalog/services/logger"
	"github.com/trezcool/catalog/storage/flatfile"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(logsvc.NewConsole(conf), conf)

	// set up storage
	db, err := flatfile.Open(conf.Storage.Root, conf.Storage.FileExt, logger)
	if err != nil {
		logger.Fatal("opening storage", err)
	}
	usrSvc := user.NewService(flatfile.NewUserRepository(db), logger)
	store := catalog.NewStore(usrSvc, flatfile.NewCourseRepository(db), db, logger)
	if err = store.LoadAll(); err != nil {
		logger.Fatal("loading data", err)
	}

	// start CLI
	cli := commandLine{store: store, in: os.Stdin, out: os.Stdout}
	runErr := cli.run(os.Args)
	if !cli.purged {
		if err = store.SaveAll(); err != nil {
			logger.Error("saving data", err)
		}
	}
	if runErr != nil {
		if runErr != errHelp {
			logger.Error("admin command failed", runErr)
		}
		os.Exit(1)
	}
}
