package cli

import (
	"context"
	"fmt"

	"github.com/stowhq/stowd/internal/protocol"
)

// Represents the 'stowd stop' command.
type StopCmd struct{}

// Executes the stop command.
//
// Asks a running daemon to shut down. The daemon acknowledges before it
// begins tearing down the socket.
func (c *StopCmd) Run(ctx context.Context) error {
	if _, err := exchange[struct{}](ctx, protocol.CmdShutdown, nil); err != nil {
		return err
	}

	fmt.Println("stowd is stopping")
	return nil
}
