package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/stowhq/stowd/internal/manifest"
	"github.com/stowhq/stowd/internal/runtime"
)

// Upper bound on the network port range.
const maxPort = 65535

// Command prefix handed the dependency manifest inside the build container.
var installerArgs = []string{"pip", "install", "--no-cache-dir", "-r"}

// Executes one image build as an explicit sequence of steps.
//
// A Builder carries the entire build context — descriptor, source root,
// container handle, accumulated runtime contract — so that independent
// builds share no state and may run concurrently. Steps must be invoked
// in pipeline order; a step called out of order fails with [ErrStepOrder]
// and any step failure moves the builder to a terminal failed phase.
type Builder struct {
	engine    Engine            // Image and container operations.
	svc       *manifest.Service // Build descriptor.
	resource  string            // Resource name, used as a prefix for the container ID.
	root      string            // Materialized project root, for resolving manifest and source paths.
	output    string            // Directory for the exported image.
	platform  string            // Target OCI platform.
	timeout   time.Duration     // Upper bound on the dependency installation step.
	phase     phase             // Current pipeline position.
	trace     []string          // Names of completed steps, in execution order.
	container Container         // Build container, nil until the base is selected.
	baseRef   string            // Normalized base image reference.
	contract  runtime.ImageConfig
}

// Creates a builder in the empty phase.
func newBuilder(engine Engine, opts Options) *Builder {
	return &Builder{
		engine:   engine,
		svc:      opts.Service,
		resource: opts.Resource,
		root:     opts.Root,
		output:   opts.Output,
		platform: opts.Platform,
		timeout:  opts.InstallTimeout,
	}
}

// Resolves the base image reference and starts the build container on top
// of it.
//
// Fails with [ErrUnresolvedBase] when the reference is malformed or cannot
// be fetched.
func (b *Builder) SelectBase(ctx context.Context) error {
	return b.step(ctx, "select-base", phaseEmpty, phaseBaseSelected, func(ctx context.Context) error {
		ref, err := b.engine.Pull(ctx, b.svc.Base, b.platform)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnresolvedBase, err)
		}
		b.baseRef = ref

		ctr, err := b.engine.StartContainer(ctx, ref, b.containerID(), b.platform)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnresolvedBase, err)
		}
		b.container = ctr
		return nil
	})
}

// Establishes the working directory inside the image.
//
// Creates the directory if absent; repeating the same path is harmless.
// All subsequent relative copy and install paths resolve against it.
func (b *Builder) SetWorkingDirectory(ctx context.Context) error {
	return b.step(ctx, "set-working-directory", phaseBaseSelected, phaseWorkdirSet, func(ctx context.Context) error {
		if err := b.container.MkdirAll(ctx, b.svc.Workdir); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}
		b.contract.WorkingDir = b.svc.Workdir
		return nil
	})
}

// Copies the dependency manifest into the image and runs the installer on it.
//
// This step runs before the source copy so that a source-only change leaves
// the dependency layers untouched. The installer is the only step that
// blocks on external I/O (the package index), so it runs under the build's
// install timeout. A nonzero installer outcome fails the build with
// [ErrDependencyResolution]; nothing is retried.
func (b *Builder) InstallDependencies(ctx context.Context) error {
	return b.step(ctx, "install-dependencies", phaseWorkdirSet, phaseDepsInstalled, func(ctx context.Context) error {
		hostPath := filepath.Join(b.root, b.svc.Requirements)
		if _, err := os.Stat(hostPath); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		name := filepath.Base(b.svc.Requirements)
		if err := copyFile(ctx, b.container, hostPath, b.svc.Workdir, name); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		args := append(append([]string(nil), installerArgs...), path.Join(b.svc.Workdir, name))
		slog.Debug("installing dependencies", "args", args)

		result, err := b.container.Exec(ctx, args, b.svc.Environ(), b.svc.Workdir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDependencyResolution, err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%w: installer exit code %d: %s", ErrDependencyResolution, result.ExitCode, result.Stderr)
		}
		return nil
	})
}

// Copies the application source tree into the working directory.
//
// The tree is copied wholesale with no transformation; existing files at
// the destination are overwritten unconditionally. A missing source path
// fails with [ErrFilesystem].
func (b *Builder) CopySource(ctx context.Context) error {
	return b.step(ctx, "copy-source", phaseDepsInstalled, phaseSourceCopied, func(ctx context.Context) error {
		hostDir := filepath.Join(b.root, b.svc.Source)
		info, err := os.Stat(hostDir)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: source %s is not a directory", ErrFilesystem, hostDir)
		}

		if err := copyTree(ctx, b.container, hostDir, b.svc.Workdir); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}
		return nil
	})
}

// Attaches the exposed port to the image's runtime contract.
//
// Pure metadata: the port is not bound or opened here. Fails with
// [ErrInvalidPort] when the port is outside [1, 65535].
func (b *Builder) DeclarePort(ctx context.Context, port int) error {
	return b.step(ctx, "declare-port", phaseSourceCopied, phasePortDeclared, func(ctx context.Context) error {
		if port < 1 || port > maxPort {
			return fmt.Errorf("%w: %d outside [1, %d]", ErrInvalidPort, port, maxPort)
		}
		b.contract.ExposedPort = port
		return nil
	})
}

// Attaches the entry command to the image's runtime contract.
//
// The referenced executable is not checked for existence inside the image;
// a missing interpreter surfaces at run time from the container runtime,
// not from this builder.
func (b *Builder) SetEntryCommand(ctx context.Context, argv []string) error {
	return b.step(ctx, "set-entry-command", phasePortDeclared, phaseEntrySet, func(ctx context.Context) error {
		if len(argv) == 0 {
			return fmt.Errorf("%w: entry command must not be empty", ErrBuild)
		}
		b.contract.Entrypoint = append([]string(nil), argv...)
		return nil
	})
}

// Commits all prior steps into a single immutable image artifact.
//
// The container's filesystem changes become a new layer and the accumulated
// runtime contract (working directory, exposed port, entry command) is
// stamped onto the image config. The artifact is written to the output
// directory as an OCI archive.
func (b *Builder) Finalize(ctx context.Context) (*Artifact, error) {
	err := b.step(ctx, "finalize", phaseEntrySet, phaseFinalized, func(ctx context.Context) error {
		if err := b.container.Stop(ctx); err != nil {
			return err
		}
		return b.container.Export(ctx, b.output, b.contract)
	})
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Output:   b.output,
		Contract: b.contract,
	}, nil
}

// Runs a single pipeline step, enforcing the linear phase order.
//
// The step is rejected with [ErrStepOrder] unless the builder is exactly in
// the phase the step expects. On success the builder advances and the step
// is recorded in the trace; on failure the builder moves to the terminal
// failed phase and the error names the failing step.
func (b *Builder) step(ctx context.Context, name string, from, next phase, fn func(context.Context) error) error {
	if b.phase.terminal() {
		return fmt.Errorf("%w: %s after %s", ErrStepOrder, name, b.phase)
	}
	if b.phase != from {
		return fmt.Errorf("%w: %s requires phase %s, currently %s", ErrStepOrder, name, from, b.phase)
	}

	if err := fn(ctx); err != nil {
		b.phase = phaseFailed
		return fmt.Errorf("step %s: %w", name, err)
	}

	b.phase = next
	b.trace = append(b.trace, name)
	return nil
}

// Returns the names of completed steps in execution order.
func (b *Builder) Trace() []string {
	return append([]string(nil), b.trace...)
}

// Releases the build container, if one was started.
func (b *Builder) destroy(ctx context.Context) {
	if b.container != nil {
		b.container.Destroy(ctx)
	}
}

// Returns a unique container ID for this build, scoped to the resource and
// platform.
func (b *Builder) containerID() string {
	return fmt.Sprintf("%s-%s-build", b.resource, platformSlug(b.platform))
}
