package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"imagehost/api"
)

func main() {
	args := ParseArgs()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: args.LogLevel,
	})))
	if !args.Validate() {
		panic("missing arguments")
	}
	server, err := api.NewServer(args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer server.Close()

	router := gin.Default()
	server.RegisterHandlers(router)
	slog.Info("Start image server", slog.String("addr", args.ServerURL), slog.String("hostServer", args.ServerConfig.HostServer))
	if err := router.Run(args.ServerURL); err != nil {
		panic(err)
	}
}
