package cli

import (
	"context"
	"fmt"

	"github.com/stowhq/stowd/internal/protocol"
)

// Represents the 'stowd status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	result, err := exchange[protocol.StatusResult](ctx, protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	fmt.Printf("stowd is running\n")
	fmt.Printf("  version: %s\n", result.Version)
	fmt.Printf("  pid:     %d\n", result.Pid)
	fmt.Printf("  uptime:  %s\n", result.Uptime)
	fmt.Printf("  builds:  %d\n", result.Builds)
	return nil
}
