package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/config"
	"github.com/infoabcd/Warehouse-Query-System/internal/app"
	"github.com/infoabcd/Warehouse-Query-System/internal/shopapi"
	"github.com/infoabcd/Warehouse-Query-System/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	version = "1.0.0"

	h         = flag.Bool("h", false, "help usage")
	showVer   = flag.Bool("v", false, "show version")
	conffile  = flag.String("c", "", "config yaml file")
	initdb    = flag.Bool("initdb", false, "drop and recreate the database tables")
	dropTable = flag.Bool("droptable", false, "drop the database tables and exit")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		return
	}
	if *h {
		flag.Usage()
		return
	}

	cfg := config.LoadConfig(*conffile)

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		zap.S().Fatalf("application init failed: %v", err)
	}
	defer application.Release()

	if *dropTable {
		application.DropAll()
		zap.S().Info("database tables dropped")
		return
	}
	if *initdb {
		if err := application.InitDb(); err != nil {
			zap.S().Fatalf("init database failed: %v", err)
		}
		if err := application.Seed(); err != nil {
			zap.S().Fatalf("seed database failed: %v", err)
		}
		zap.S().Info("database initialized")
		return
	}

	srv := webserver.NewServer(cfg.Web, application.Tokens())
	shopapi.Register(srv, application)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			zap.S().Infof("received %s, shutting down", sig)
		case <-ctx.Done():
			zap.S().Info("context cancelled, shutting down")
		}
		return srv.Shutdown(shutdownTimeout)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server exited with error: %v", err)
		application.Release()
		os.Exit(1)
	}
}
