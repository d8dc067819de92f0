package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/stowhq/stowd/internal/paths"
	"github.com/stowhq/stowd/internal/protocol"
)

// Sent by commands that talk to a running daemon.
var ErrDaemonUnreachable = errors.New("daemon unreachable")

// Performs a single request-response exchange with the daemon.
//
// Dials the daemon socket, writes one newline-delimited JSON envelope, and
// reads one response line. Error responses from the daemon are unwrapped
// into plain errors.
func exchange[T any](ctx context.Context, cmd protocol.Command, payload any) (*T, error) {
	socketPath := RootCmd.Socket
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: is stowd running? (%w)", ErrDaemonUnreachable, err)
	}
	defer conn.Close()

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, err
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemonUnreachable, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemonUnreachable, err)
	}

	env, raw, err := protocol.Decode(line)
	if err != nil {
		return nil, err
	}

	if env.Command == protocol.CmdError {
		res, err := protocol.DecodePayload[protocol.ErrorResult](raw)
		if err != nil {
			return nil, err
		}
		return nil, errors.New(res.Message)
	}

	// Acknowledgements carry no payload.
	if len(raw) == 0 {
		return new(T), nil
	}

	return protocol.DecodePayload[T](raw)
}
