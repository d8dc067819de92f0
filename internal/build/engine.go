package build

import (
	"context"
	"io"

	"github.com/stowhq/stowd/internal/runtime"
)

// Container operations the pipeline needs from the runtime.
//
// *runtime.Container satisfies this interface; tests substitute fakes.
type Container interface {
	MkdirAll(ctx context.Context, path string) error
	Exec(ctx context.Context, args []string, env []string, workdir string) (*runtime.ExecResult, error)
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	Stop(ctx context.Context) error
	Export(ctx context.Context, output string, cfg runtime.ImageConfig) error
	Destroy(ctx context.Context)
}

// Image operations the pipeline needs from the runtime.
type Engine interface {
	Pull(ctx context.Context, ref, platform string) (string, error)
	StartContainer(ctx context.Context, ref, id, platform string) (Container, error)
}

// Adapts a [runtime.Runtime] to the [Engine] interface.
type engine struct {
	rt *runtime.Runtime
}

// Wraps a containerd-backed runtime for use by the build pipeline.
func NewEngine(rt *runtime.Runtime) Engine {
	return &engine{rt: rt}
}

func (e *engine) Pull(ctx context.Context, ref, platform string) (string, error) {
	return e.rt.Pull(ctx, ref, platform)
}

func (e *engine) StartContainer(ctx context.Context, ref, id, platform string) (Container, error) {
	return e.rt.StartContainer(ctx, ref, id, platform)
}
