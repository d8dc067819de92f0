package build

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stowhq/stowd/internal/manifest"
	"github.com/stowhq/stowd/internal/runtime"
)

// In-memory Container that records the operations the pipeline performs.
type fakeContainer struct {
	mkdirs     []string
	execs      [][]string
	copyDests  []string
	execResult *runtime.ExecResult
	execErr    error
	stopped    bool
	exported   bool
	exportCfg  runtime.ImageConfig
	destroyed  bool
}

func (f *fakeContainer) MkdirAll(ctx context.Context, path string) error {
	f.mkdirs = append(f.mkdirs, path)
	return nil
}

func (f *fakeContainer) Exec(ctx context.Context, args []string, env []string, workdir string) (*runtime.ExecResult, error) {
	f.execs = append(f.execs, args)
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.execResult != nil {
		return f.execResult, nil
	}
	return &runtime.ExecResult{}, nil
}

func (f *fakeContainer) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	f.copyDests = append(f.copyDests, destDir)
	_, err := io.Copy(io.Discard, r)
	return err
}

func (f *fakeContainer) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func (f *fakeContainer) Export(ctx context.Context, output string, cfg runtime.ImageConfig) error {
	f.exported = true
	f.exportCfg = cfg
	return nil
}

func (f *fakeContainer) Destroy(ctx context.Context) {
	f.destroyed = true
}

type fakeEngine struct {
	container *fakeContainer
	pullErr   error
	startErr  error
	pulled    []string
}

func (f *fakeEngine) Pull(ctx context.Context, ref, platform string) (string, error) {
	if f.pullErr != nil {
		return "", f.pullErr
	}
	f.pulled = append(f.pulled, ref)
	return ref, nil
}

func (f *fakeEngine) StartContainer(ctx context.Context, ref, id, platform string) (Container, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.container, nil
}

// Writes a minimal buildable project root: a requirements file and a source
// tree containing the service's main file.
func projectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("flask==3.0.0\n"), 0644); err != nil {
		t.Fatalf("write requirements: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "app.py"), []byte("print('hi')\n"), 0644); err != nil {
		t.Fatalf("write app.py: %v", err)
	}
	return root
}

func service() *manifest.Service {
	return &manifest.Service{
		Base:         "python:3.12-slim",
		Workdir:      "/app",
		Requirements: "requirements.txt",
		Source:       ".",
		Port:         8080,
		Entrypoint:   []string{"python", "app.py"},
	}
}

func options(t *testing.T, root string) Options {
	t.Helper()
	return Options{
		Service:  service(),
		Resource: "api",
		Root:     root,
		Output:   filepath.Join(t.TempDir(), "dist"),
		Platform: "linux/amd64",
	}
}

func TestRunPipeline(t *testing.T) {
	ctr := &fakeContainer{}
	eng := &fakeEngine{container: ctr}
	opts := options(t, projectRoot(t))

	artifact, err := Run(context.Background(), eng, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if artifact.Output != opts.Output {
		t.Fatalf("output = %q, want %q", artifact.Output, opts.Output)
	}
	if artifact.Contract.WorkingDir != "/app" {
		t.Fatalf("contract workdir = %q, want /app", artifact.Contract.WorkingDir)
	}
	if artifact.Contract.ExposedPort != 8080 {
		t.Fatalf("contract port = %d, want 8080", artifact.Contract.ExposedPort)
	}
	if len(artifact.Contract.Entrypoint) != 2 || artifact.Contract.Entrypoint[0] != "python" {
		t.Fatalf("contract entrypoint = %v, want [python app.py]", artifact.Contract.Entrypoint)
	}

	if !ctr.stopped {
		t.Fatal("container was not stopped before export")
	}
	if !ctr.exported {
		t.Fatal("container was not exported")
	}
	if !ctr.destroyed {
		t.Fatal("container was not destroyed after the build")
	}
	if ctr.exportCfg.ExposedPort != 8080 {
		t.Fatalf("exported port = %d, want 8080", ctr.exportCfg.ExposedPort)
	}
}

func TestRunInstallPrecedesSourceCopy(t *testing.T) {
	ctr := &fakeContainer{}
	eng := &fakeEngine{container: ctr}
	opts := options(t, projectRoot(t))

	b := newBuilder(eng, opts)
	if _, err := run(context.Background(), b, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trace := b.Trace()
	install := slices.Index(trace, "install-dependencies")
	copySource := slices.Index(trace, "copy-source")
	if install == -1 || copySource == -1 {
		t.Fatalf("trace %v missing install or copy step", trace)
	}
	if install >= copySource {
		t.Fatalf("trace %v: install-dependencies must precede copy-source", trace)
	}
}

func TestRunDeterministicTrace(t *testing.T) {
	root := projectRoot(t)

	traces := make([][]string, 2)
	for i := range traces {
		eng := &fakeEngine{container: &fakeContainer{}}
		opts := options(t, root)
		b := newBuilder(eng, opts)
		if _, err := run(context.Background(), b, opts); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		traces[i] = b.Trace()
	}

	if !slices.Equal(traces[0], traces[1]) {
		t.Fatalf("traces differ:\n%v\n%v", traces[0], traces[1])
	}
}

func TestRunUnresolvedBase(t *testing.T) {
	eng := &fakeEngine{container: &fakeContainer{}, pullErr: errors.New("manifest unknown")}
	opts := options(t, projectRoot(t))

	artifact, err := Run(context.Background(), eng, opts)
	if !errors.Is(err, ErrUnresolvedBase) {
		t.Fatalf("err = %v, want ErrUnresolvedBase", err)
	}
	if artifact != nil {
		t.Fatal("failed build yielded an artifact")
	}
}

func TestRunMissingRequirements(t *testing.T) {
	root := t.TempDir() // no requirements.txt
	ctr := &fakeContainer{}
	eng := &fakeEngine{container: ctr}

	_, err := Run(context.Background(), eng, options(t, root))
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("err = %v, want ErrFilesystem", err)
	}
	if len(ctr.execs) != 0 {
		t.Fatalf("installer ran despite missing manifest: %v", ctr.execs)
	}
}

func TestRunMissingSource(t *testing.T) {
	root := projectRoot(t)
	opts := options(t, root)
	opts.Service.Source = "absent"

	ctr := &fakeContainer{}
	eng := &fakeEngine{container: ctr}

	artifact, err := Run(context.Background(), eng, opts)
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("err = %v, want ErrFilesystem", err)
	}
	if artifact != nil {
		t.Fatal("failed build yielded an artifact")
	}
	if ctr.exported {
		t.Fatal("container exported despite failed copy")
	}
}

func TestRunDependencyResolutionFailure(t *testing.T) {
	ctr := &fakeContainer{
		execResult: &runtime.ExecResult{ExitCode: 1, Stderr: "no matching distribution"},
	}
	eng := &fakeEngine{container: ctr}
	opts := options(t, projectRoot(t))

	b := newBuilder(eng, opts)
	artifact, err := run(context.Background(), b, opts)
	if !errors.Is(err, ErrDependencyResolution) {
		t.Fatalf("err = %v, want ErrDependencyResolution", err)
	}
	if artifact != nil {
		t.Fatal("failed build yielded an artifact")
	}

	// No step after install-dependencies may execute.
	trace := b.Trace()
	if slices.Contains(trace, "copy-source") {
		t.Fatalf("trace %v contains copy-source after failed install", trace)
	}
	if ctr.exported {
		t.Fatal("container exported despite failed install")
	}

	// Source copy would be the second CopyTo; only the manifest copy ran.
	if len(ctr.copyDests) != 1 {
		t.Fatalf("copyDests = %v, want only the manifest copy", ctr.copyDests)
	}
}

func TestRunInstallerTransportError(t *testing.T) {
	ctr := &fakeContainer{execErr: errors.New("connection refused")}
	eng := &fakeEngine{container: ctr}

	_, err := Run(context.Background(), eng, options(t, projectRoot(t)))
	if !errors.Is(err, ErrDependencyResolution) {
		t.Fatalf("err = %v, want ErrDependencyResolution", err)
	}
}

func TestDeclarePortValidation(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "zero", port: 0, wantErr: true},
		{name: "above range", port: 70000, wantErr: true},
		{name: "negative", port: -1, wantErr: true},
		{name: "valid", port: 8080},
		{name: "lower bound", port: 1},
		{name: "upper bound", port: 65535},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{phase: phaseSourceCopied}
			err := b.DeclarePort(context.Background(), tt.port)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPort) {
					t.Fatalf("err = %v, want ErrInvalidPort", err)
				}
				if b.phase != phaseFailed {
					t.Fatalf("phase = %s, want failed", b.phase)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.contract.ExposedPort != tt.port {
				t.Fatalf("contract port = %d, want %d", b.contract.ExposedPort, tt.port)
			}
		})
	}
}

func TestStepOrderEnforced(t *testing.T) {
	b := &Builder{}

	if err := b.CopySource(context.Background()); !errors.Is(err, ErrStepOrder) {
		t.Fatalf("err = %v, want ErrStepOrder", err)
	}
}

func TestFailedBuilderRejectsFurtherSteps(t *testing.T) {
	b := &Builder{phase: phaseSourceCopied}

	if err := b.DeclarePort(context.Background(), 0); !errors.Is(err, ErrInvalidPort) {
		t.Fatalf("err = %v, want ErrInvalidPort", err)
	}

	if err := b.SetEntryCommand(context.Background(), []string{"python"}); !errors.Is(err, ErrStepOrder) {
		t.Fatalf("err = %v, want ErrStepOrder after failure", err)
	}
}

func TestSetEntryCommandCopiesArgv(t *testing.T) {
	b := &Builder{phase: phasePortDeclared}

	argv := []string{"python", "app.py"}
	if err := b.SetEntryCommand(context.Background(), argv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	argv[0] = "mutated"
	if b.contract.Entrypoint[0] != "python" {
		t.Fatal("entry command aliases caller slice")
	}
}

func TestPlatformSlug(t *testing.T) {
	if got := platformSlug("linux/amd64"); got != "linux-amd64" {
		t.Fatalf("platformSlug = %q, want linux-amd64", got)
	}
	if got := platformSlug("linux/arm/v7"); got != "linux-arm-v7" {
		t.Fatalf("platformSlug = %q, want linux-arm-v7", got)
	}
}
