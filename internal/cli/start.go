package cli

import (
	"context"
	"log/slog"

	"github.com/stowhq/stowd/internal/server"
)

// Represents the 'stowd start' command.
type StartCmd struct {
	ContainerdAddress   string `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	ContainerdNamespace string `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
}

// Executes the start command.
//
// Starts the daemon on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM) or a shutdown command arrives.
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   c.ContainerdAddress,
		ContainerdNamespace: c.ContainerdNamespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("stowd is running")

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-stopped(srv):
		return nil
	}
}

// Adapts [server.Server.Wait] to a channel for use in select.
func stopped(srv *server.Server) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		srv.Wait()
		close(ch)
	}()
	return ch
}
