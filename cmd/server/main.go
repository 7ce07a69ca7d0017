package main

import (
	"context"
	"log"
	"os"

	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/di"
	"github.com/Adi4512/nextjsaichattool/internal/server"
)

func main() {
	app, err := di.InitializeApp()
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer app.Close()

	config.LogEnvStatus(app.Config, app.Logger)
	app.Logger.Info(
		"http_server_start",
		"addr", app.Server.Addr,
		"http2", app.Config.HTTP.HTTP2Enabled,
		"provider", app.Config.Upstream.Provider,
	)

	err = server.Run(
		context.Background(),
		app.Logger,
		app.Server,
		app.Config.HTTP.ShutdownTimeout(),
		app.Janitor.Tasks()...,
	)
	if err != nil {
		app.Logger.Error("server_exited", "err", err)
		app.Close()
		os.Exit(1)
	}
	app.Logger.Info("server_stopped")
}
