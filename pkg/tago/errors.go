package tago

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetwork  Kind = "network"
	KindUpstream Kind = "upstream"
	KindParse    Kind = "parse"
)

// GatewayError is returned by every failed transit API call.
type GatewayError struct {
	Kind Kind
	Op   string

	// Code is the upstream resultCode or HTTP status, when there is one
	Code    string
	Message string

	Err error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("tago %s: %s error", e.Op, e.Kind)
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a GatewayError of the given kind.
func IsKind(err error, kind Kind) bool {
	var gatewayError *GatewayError
	if errors.As(err, &gatewayError) {
		return gatewayError.Kind == kind
	}
	return false
}
