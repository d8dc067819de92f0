package protocol

import (
	"encoding/json"
	"fmt"
)

// A command or response kind carried in an envelope.
type Command string

const (
	CmdBuild    Command = "build"    // Build an image from a descriptor.
	CmdStatus   Command = "status"   // Query daemon status.
	CmdShutdown Command = "shutdown" // Stop the daemon.
	CmdOK       Command = "ok"       // Successful response.
	CmdError    Command = "error"    // Failed response.
)

// The framing for every message exchanged with the daemon.
//
// Envelopes travel as single newline-delimited JSON objects over the Unix
// socket. The payload is deferred so the command can be inspected before
// the body is decoded.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Asks the daemon to build one image.
type BuildRequest struct {
	Resource       string `json:"resource"`                  // Name for the built resource; prefixes container IDs.
	Path           string `json:"path,omitempty"`            // Local project root.
	Repo           string `json:"repo,omitempty"`            // Git repository URL, alternative to Path.
	Descriptor     string `json:"descriptor,omitempty"`      // Descriptor path relative to the root. Empty uses the default.
	Output         string `json:"output"`                    // Directory for the exported image.
	Platform       string `json:"platform,omitempty"`        // Target platform. Empty uses the host.
	InstallTimeout string `json:"install_timeout,omitempty"` // Duration bound on dependency installation (e.g., "10m").
}

// Reports a completed build and its runtime contract.
type BuildResult struct {
	Output     string   `json:"output"`     // Directory containing the exported image.
	Workdir    string   `json:"workdir"`    // Working directory stamped onto the image.
	Port       int      `json:"port"`       // Exposed port stamped onto the image.
	Entrypoint []string `json:"entrypoint"` // Entry command stamped onto the image.
}

// Reports daemon health and counters.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Carries a failure message back to the client.
type ErrorResult struct {
	Message string `json:"message"`
}

// Serializes a command and payload into a JSON envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Parses a JSON envelope, returning the envelope and its raw payload.
func Decode(data []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("envelope has no command")
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &v, nil
}
