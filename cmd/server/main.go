package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/logger"
	"github.com/rhyrak/term-scheduler/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := newServer(cfg, log, metrics.New())
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("server listening", zap.String("addr", addr))
	if err := srv.router().Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
