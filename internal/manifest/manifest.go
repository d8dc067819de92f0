package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default name of the build descriptor within a project root.
const DefaultFilename = "stowfile.toml"

// Defaults applied to fields the descriptor leaves unset.
const (
	defaultWorkdir      = "/app"
	defaultRequirements = "requirements.txt"
	defaultSource       = "."
	defaultPort         = 8080
)

// Default entry command: the interpreter and the service's main file.
var defaultEntrypoint = []string{"python", "app.py"}

// Describes how a service is packaged into an image.
//
// Every field except Base has a default, so a minimal descriptor only names
// the foundation image. The requirements file content is opaque to stowd;
// it is handed to the installer inside the build container as-is.
type Service struct {
	Base         string            `toml:"base"`         // Base runtime image reference (e.g., "python:3.12-slim").
	Workdir      string            `toml:"workdir"`      // Absolute working directory inside the image.
	Requirements string            `toml:"requirements"` // Dependency manifest path, relative to the project root.
	Source       string            `toml:"source"`       // Source tree path, relative to the project root.
	Port         int               `toml:"port"`         // Network port the service is expected to listen on.
	Entrypoint   []string          `toml:"entrypoint"`   // Argument vector that starts the service.
	Env          map[string]string `toml:"env"`          // Extra environment for installer runs.
}

// Reads and validates a service descriptor from a TOML file.
//
// Unset fields receive defaults before validation, so a descriptor that only
// declares a base image is complete.
func Load(path string) (*Service, error) {
	var svc Service

	meta, err := toml.DecodeFile(path, &svc)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("descriptor not found: %s", path)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}

	svc.applyDefaults()

	if err := svc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &svc, nil
}

// Fills unset fields with defaults.
func (s *Service) applyDefaults() {
	if s.Workdir == "" {
		s.Workdir = defaultWorkdir
	}
	if s.Requirements == "" {
		s.Requirements = defaultRequirements
	}
	if s.Source == "" {
		s.Source = defaultSource
	}
	if s.Port == 0 {
		s.Port = defaultPort
	}
	if len(s.Entrypoint) == 0 {
		s.Entrypoint = append([]string(nil), defaultEntrypoint...)
	}
}

// Checks structural requirements of the descriptor.
//
// The base image is the only field without a default. The working directory
// must be absolute because every later copy and install step resolves paths
// against it. Port range checking is left to the build pipeline, which
// reports it as its own error kind.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Base) == "" {
		return fmt.Errorf("base image is required")
	}
	if !filepath.IsAbs(s.Workdir) {
		return fmt.Errorf("workdir %q must be absolute", s.Workdir)
	}
	if len(s.Entrypoint) == 0 {
		return fmt.Errorf("entrypoint must not be empty")
	}
	for _, arg := range s.Entrypoint {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("entrypoint contains an empty argument")
		}
	}
	return nil
}

// Formats the installer environment as "key=value" pairs.
func (s *Service) Environ() []string {
	env := make([]string, 0, len(s.Env))
	for k, v := range s.Env {
		env = append(env, k+"="+v)
	}
	return env
}
