package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/openmallhq/openmall/config"
	"github.com/openmallhq/openmall/internal/adminapi"
	"github.com/openmallhq/openmall/internal/api"
	"github.com/openmallhq/openmall/internal/app"
	"github.com/openmallhq/openmall/internal/webserver"
)

var (
	h        bool
	showVer  bool
	initDb   bool
	conffile string
	port     int
)

// set at build time
var (
	BuildVersion string
	ReleaseDate  string
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&showVer, "v", false, "show version")
	flag.BoolVar(&initDb, "initdb", false, "drop and recreate the database schema with seed data")
	flag.StringVar(&conffile, "conf", "", "config file, yaml format")
	flag.IntVar(&port, "port", 0, "override web listen port")
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		return
	}
	if showVer {
		fmt.Printf("openmall %s (%s)\n", BuildVersion, ReleaseDate)
		return
	}

	cfg := config.LoadConfig(conffile)
	if port > 0 {
		cfg.Web.Port = port
	}

	a := app.NewApplication(cfg)
	a.Init(cfg)
	defer a.Release()

	if initDb {
		a.InitDb()
		zap.S().Info("database initialized")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := webserver.Init(cfg, a.DB())
	api.Register(a)
	adminapi.Register(a)

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.S().Error(err)
		os.Exit(1)
	}
}
