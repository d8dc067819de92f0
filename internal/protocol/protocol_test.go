package protocol

import (
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdBuild, &BuildRequest{
		Resource: "api",
		Path:     "/srv/api",
		Output:   "dist",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Command != CmdBuild {
		t.Fatalf("command = %q, want %q", env.Command, CmdBuild)
	}

	req, err := DecodePayload[BuildRequest](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if req.Resource != "api" || req.Path != "/srv/api" || req.Output != "dist" {
		t.Fatalf("request = %+v, want original fields", req)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Command != CmdShutdown {
		t.Fatalf("command = %q, want %q", env.Command, CmdShutdown)
	}
	if len(payload) != 0 {
		t.Fatalf("payload = %s, want empty", payload)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, err := Decode([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestDecodeMissingCommand(t *testing.T) {
	_, _, err := Decode([]byte(`{"payload":{}}`))
	if err == nil {
		t.Fatal("expected error for missing command, got nil")
	}
	if !strings.Contains(err.Error(), "command") {
		t.Fatalf("error %q does not mention the command", err)
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	if _, err := DecodePayload[BuildRequest](nil); err == nil {
		t.Fatal("expected error for empty payload, got nil")
	}
}
