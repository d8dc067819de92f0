package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/stowhq/stowd/internal/manifest"
	"github.com/stowhq/stowd/internal/paths"
	"github.com/stowhq/stowd/internal/runtime"
)

// Default upper bound on the dependency installation step. Installation is
// the only step that reaches the network after the base pull, and a hung
// package index would otherwise stall the build forever.
const DefaultInstallTimeout = 15 * time.Minute

// Controls pipeline execution.
type Options struct {
	Service        *manifest.Service // Build descriptor to execute.
	Resource       string            // Resource name, used as a prefix for the container ID.
	Root           string            // Project root, for resolving manifest and source paths.
	Output         string            // Directory for the exported image.
	Platform       string            // Target platform (e.g., "linux/amd64"). Defaults to host.
	InstallTimeout time.Duration     // Bound on dependency installation. Defaults to [DefaultInstallTimeout].
}

// The immutable result of a successful build.
type Artifact struct {
	Output   string              // Directory containing the exported OCI archive.
	Contract runtime.ImageConfig // Runtime contract stamped onto the image.
}

// Executes the full build pipeline against the container runtime.
//
// Steps run in the fixed order select-base, set-working-directory,
// install-dependencies, copy-source, declare-port, set-entry-command,
// finalize. The dependency manifest is installed before the source tree is
// copied so that a source-only change invalidates fewer cached layers. The
// first failing step aborts the pipeline; a failed build yields no artifact.
// The build container is always destroyed when the pipeline returns.
func Run(ctx context.Context, engine Engine, opts Options) (*Artifact, error) {
	if opts.Platform == "" {
		opts.Platform = runtime.DefaultPlatform()
	}
	if opts.InstallTimeout <= 0 {
		opts.InstallTimeout = DefaultInstallTimeout
	}

	slog.Info("executing build",
		"resource", opts.Resource,
		"base", opts.Service.Base,
		"output", opts.Output,
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	b := newBuilder(engine, opts)
	defer b.destroy(ctx)

	artifact, err := run(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: resource %s: %w", ErrBuild, opts.Resource, err)
	}
	return artifact, nil
}

// Drives the builder through every pipeline step in order.
func run(ctx context.Context, b *Builder, opts Options) (*Artifact, error) {
	if err := b.SelectBase(ctx); err != nil {
		return nil, err
	}
	if err := b.SetWorkingDirectory(ctx); err != nil {
		return nil, err
	}
	if err := b.InstallDependencies(ctx); err != nil {
		return nil, err
	}
	if err := b.CopySource(ctx); err != nil {
		return nil, err
	}
	if err := b.DeclarePort(ctx, opts.Service.Port); err != nil {
		return nil, err
	}
	if err := b.SetEntryCommand(ctx, opts.Service.Entrypoint); err != nil {
		return nil, err
	}
	return b.Finalize(ctx)
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
