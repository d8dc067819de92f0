// Package protocol defines the wire format between the stow CLI and the
// daemon.
//
// Messages are newline-delimited JSON envelopes over a Unix domain socket.
// Each envelope names a command and carries an optional payload, decoded
// lazily by the receiver once the command is known. A connection carries a
// single request-response exchange.
package protocol
