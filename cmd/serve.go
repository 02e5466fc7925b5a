package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/df07/go-pathtracer/web/server"
	"github.com/urfave/cli"
)

// Serve runs the web front end until interrupted.
func Serve(ctx *cli.Context) error {
	setupLogging(ctx)

	srv := server.NewServer(server.Config{
		Port:      ctx.Int("port"),
		SceneDir:  ctx.String("scene-dir"),
		StaticDir: ctx.String("static"),
		Settings:  settingsFromFlags(ctx),
	})

	serveCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Noticef("visit http://localhost:%d to start rendering", ctx.Int("port"))
	return srv.Start(serveCtx)
}
