// Package protocol defines the newline-delimited request and response
// objects the driver exchanges with its caller, and the taxonomy used to
// turn failures into response envelopes.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Status is the outcome of one request.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
	StatusFatal Status = "fatal"
)

// Request is one input line. Unknown fields are ignored; only Content feeds
// the transcoder.
type Request struct {
	Action          string `json:"action"`
	Language        string `json:"language"`
	LanguageVersion string `json:"languageVersion"`
	Content         string `json:"content"`
	Encoding        string `json:"encoding"`
}

// DecodeRequest parses one input line. Any failure is a *RequestError.
func DecodeRequest(line []byte) (Request, error) {
	var req Request
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return req, &RequestError{Err: errors.New("request is not a JSON object")}
	}
	if err := json.Unmarshal(line, &req); err != nil {
		return req, &RequestError{Err: err}
	}
	return req, nil
}

// Metadata is the fixed part of every response.
type Metadata struct {
	Driver          string `json:"driver"`
	Language        string `json:"language"`
	LanguageVersion string `json:"languageVersion"`
}

// DefaultMetadata matches what the downstream normalizer expects when
// nothing is configured.
var DefaultMetadata = Metadata{
	Driver:          "1.0.0",
	Language:        "C++",
	LanguageVersion: "14",
}

// Response is one output line.
type Response struct {
	Metadata
	Status Status          `json:"status"`
	Errors []string        `json:"errors"`
	AST    json.RawMessage `json:"ast,omitempty"`
}

// OK wraps a serialized document.
func OK(meta Metadata, doc json.RawMessage) Response {
	return Response{Metadata: meta, Status: StatusOK, Errors: []string{}, AST: doc}
}

// Failure builds the envelope for err: its classified status and the
// [kind, message, trace] diagnostics. It carries no document.
func Failure(meta Metadata, err error) Response {
	return Response{
		Metadata: meta,
		Status:   Classify(err),
		Errors:   []string{Kind(err), Message(err), Trace(err)},
	}
}

// Encode renders r as a single line, without the trailing newline.
func (r Response) Encode() ([]byte, error) {
	if r.Errors == nil {
		r.Errors = []string{}
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return b, nil
}
