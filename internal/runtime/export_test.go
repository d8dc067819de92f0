package runtime

import (
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestApplyImageConfig(t *testing.T) {
	config := ocispec.Image{}
	config.Config.Cmd = []string{"python3"}

	applyImageConfig(&config, ImageConfig{
		WorkingDir:  "/app",
		ExposedPort: 8080,
		Entrypoint:  []string{"python", "app.py"},
	})

	if config.Config.WorkingDir != "/app" {
		t.Fatalf("workdir = %q, want /app", config.Config.WorkingDir)
	}
	if _, ok := config.Config.ExposedPorts["8080/tcp"]; !ok {
		t.Fatalf("exposed ports = %v, want 8080/tcp", config.Config.ExposedPorts)
	}
	if len(config.Config.Entrypoint) != 2 || config.Config.Entrypoint[0] != "python" {
		t.Fatalf("entrypoint = %v, want [python app.py]", config.Config.Entrypoint)
	}
	if config.Config.Cmd != nil {
		t.Fatalf("cmd = %v, want nil after entrypoint override", config.Config.Cmd)
	}
}

func TestApplyImageConfigAccumulatesPorts(t *testing.T) {
	config := ocispec.Image{}
	config.Config.ExposedPorts = map[string]struct{}{"5432/tcp": {}}

	applyImageConfig(&config, ImageConfig{ExposedPort: 8080})

	if _, ok := config.Config.ExposedPorts["5432/tcp"]; !ok {
		t.Fatal("base image port 5432/tcp was dropped")
	}
	if _, ok := config.Config.ExposedPorts["8080/tcp"]; !ok {
		t.Fatal("declared port 8080/tcp missing")
	}
}

func TestApplyImageConfigZeroValues(t *testing.T) {
	config := ocispec.Image{}
	config.Config.WorkingDir = "/base"
	config.Config.Cmd = []string{"python3"}

	applyImageConfig(&config, ImageConfig{})

	if config.Config.WorkingDir != "/base" {
		t.Fatalf("workdir = %q, want /base untouched", config.Config.WorkingDir)
	}
	if config.Config.ExposedPorts != nil {
		t.Fatalf("exposed ports = %v, want nil", config.Config.ExposedPorts)
	}
	if len(config.Config.Cmd) != 1 {
		t.Fatalf("cmd = %v, want preserved", config.Config.Cmd)
	}
}

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	configLabel := labels["containerd.io/gc.ref.content.config"]
	if configLabel != m.Config.Digest.String() {
		t.Fatalf("config label = %q, want %q", configLabel, m.Config.Digest.String())
	}

	for i, layer := range m.Layers {
		key := "containerd.io/gc.ref.content.l." + string(rune('0'+i))
		got := labels[key]
		if got != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, got, layer.Digest.String())
		}
	}

	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestIndexGCLabels(t *testing.T) {
	idx := ocispec.Index{
		Manifests: []ocispec.Descriptor{
			{Digest: digest.FromString("m0")},
			{Digest: digest.FromString("m1")},
		},
	}

	labels := indexGCLabels(idx)
	if len(labels) != 2 {
		t.Fatalf("len(labels) = %d, want 2", len(labels))
	}
	if labels["containerd.io/gc.ref.content.m.0"] != idx.Manifests[0].Digest.String() {
		t.Fatal("manifest 0 label mismatch")
	}
	if labels["containerd.io/gc.ref.content.m.1"] != idx.Manifests[1].Digest.String() {
		t.Fatal("manifest 1 label mismatch")
	}
}
