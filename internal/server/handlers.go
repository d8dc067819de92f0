package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/stowhq/stowd/internal"
	"github.com/stowhq/stowd/internal/build"
	"github.com/stowhq/stowd/internal/manifest"
	"github.com/stowhq/stowd/internal/protocol"
	"github.com/stowhq/stowd/internal/source"
)

// Handles a build command.
//
// Materializes the project root, loads the descriptor, and runs the build
// pipeline against the container runtime. The response carries the artifact
// location and the image's runtime contract.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	result, err := s.runBuild(ctx, req)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, result)
}

// Executes one build request end-to-end.
func (s *Server) runBuild(ctx context.Context, req *protocol.BuildRequest) (*protocol.BuildResult, error) {
	root, cleanup, err := source.Materialize(ctx, source.Input{
		Path: req.Path,
		Repo: req.Repo,
	})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	descriptor := req.Descriptor
	if descriptor == "" {
		descriptor = manifest.DefaultFilename
	}

	svc, err := manifest.Load(filepath.Join(root, descriptor))
	if err != nil {
		return nil, err
	}

	installTimeout, err := parseInstallTimeout(req.InstallTimeout)
	if err != nil {
		return nil, err
	}

	artifact, err := build.Run(ctx, build.NewEngine(s.runtime), build.Options{
		Service:        svc,
		Resource:       req.Resource,
		Root:           root,
		Output:         req.Output,
		Platform:       req.Platform,
		InstallTimeout: installTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &protocol.BuildResult{
		Output:     artifact.Output,
		Workdir:    artifact.Contract.WorkingDir,
		Port:       artifact.Contract.ExposedPort,
		Entrypoint: artifact.Contract.Entrypoint,
	}, nil
}

// Parses the optional per-request install timeout.
//
// An empty value defers to the build package's default.
func parseInstallTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid install timeout %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("install timeout %q must be positive", raw)
	}
	return d, nil
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
