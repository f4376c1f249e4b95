// Package loop runs a local session: a private server ticking the world
// and one client drawing it to the current terminal.
package loop

import (
	"bufio"
	"context"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomz197/swarm/internal/config"
	"github.com/tomz197/swarm/internal/draw"
	"github.com/tomz197/swarm/internal/loop/client"
	"github.com/tomz197/swarm/internal/loop/server"
)

// Run plays until the user quits. The server stops with the client.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger, r *bufio.Reader, w io.Writer, size draw.TermSizeFunc) error {
	srv := server.New(cfg, log)
	c := client.New(srv, r, w, client.Options{
		TermSizeFunc: size,
		Username:     config.GetEnv("USER", "player"),
		ViewWidth:    cfg.Demo.ViewWidth,
		ViewHeight:   cfg.Demo.ViewHeight,
	})

	ctx, cancel := context.WithCancel(ctx)
	var g errgroup.Group
	g.Go(func() error {
		srv.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return c.Run()
	})
	return g.Wait()
}
