package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talkincode/toughwms/config"
	"github.com/talkincode/toughwms/internal/adminapi"
	"github.com/talkincode/toughwms/internal/app"
	"github.com/talkincode/toughwms/internal/webserver"
	"github.com/talkincode/toughwms/pkg/common"
	"go.uber.org/zap"
)

var (
	h        = flag.Bool("h", false, "show help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "/etc/toughwms.yml", "config file path")
	initdb   = flag.Bool("initdb", false, "drop and rebuild the database schema")
)

// injected at build time
var (
	BuildVersion string
	ReleaseDate  string
)

func printVersion() {
	fmt.Printf("toughwms %s (%s)\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()

	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	appconfig := config.LoadConfig(*conffile)
	common.MakeDir(appconfig.System.Workdir)
	common.MakeDir(appconfig.GetDataDir())
	common.MakeDir(appconfig.GetLogDir())

	application := app.NewApplication(appconfig)
	application.Init(appconfig)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		os.Exit(0)
	}

	webserver.Init(application)
	adminapi.InitRouter()

	go func() {
		if err := webserver.Listen(); err != nil {
			zap.S().Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	webserver.Shutdown()
	zap.S().Info("toughwms stopped")
}
