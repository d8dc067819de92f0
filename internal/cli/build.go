package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stowhq/stowd/internal/protocol"
)

// Represents the 'stowd build' command.
type BuildCmd struct {
	Path           string `arg:"" optional:"" help:"Project directory containing the descriptor." type:"path"`
	Repo           string `help:"Git repository URL to build from instead of a local path." placeholder:"URL"`
	Resource       string `short:"r" help:"Resource name for the image. Defaults to the project directory name." placeholder:"NAME"`
	Descriptor     string `short:"f" help:"Descriptor filename within the project root." placeholder:"FILE"`
	Output         string `short:"o" help:"Directory to write the image archive into." default:"dist" type:"path"`
	Platform       string `help:"Target platform, e.g. linux/amd64." placeholder:"OS/ARCH"`
	InstallTimeout string `help:"Timeout for dependency installation, e.g. 10m." placeholder:"DURATION"`
}

// Executes the build command.
//
// Sends a build request to the daemon and prints the resulting artifact
// location and runtime contract.
func (c *BuildCmd) Run(ctx context.Context) error {
	if c.Path == "" && c.Repo == "" {
		c.Path = "."
	}

	path := c.Path
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		path = abs
	}

	output, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}

	resource := c.Resource
	if resource == "" {
		resource = resourceName(path, c.Repo)
	}

	result, err := exchange[protocol.BuildResult](ctx, protocol.CmdBuild, &protocol.BuildRequest{
		Resource:       resource,
		Path:           path,
		Repo:           c.Repo,
		Descriptor:     c.Descriptor,
		Output:         output,
		Platform:       c.Platform,
		InstallTimeout: c.InstallTimeout,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Built %s\n", resource)
	fmt.Printf("  archive:    %s\n", result.Output)
	fmt.Printf("  workdir:    %s\n", result.Workdir)
	fmt.Printf("  port:       %d\n", result.Port)
	fmt.Printf("  entrypoint: %s\n", strings.Join(result.Entrypoint, " "))
	return nil
}

// Derives a resource name from the project location.
func resourceName(path, repo string) string {
	if path != "" {
		return filepath.Base(path)
	}
	name := repo
	name = strings.TrimSuffix(name, ".git")
	name = strings.TrimRight(name, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "service"
	}
	return name
}
