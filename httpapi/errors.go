package httpapi

import "errors"

var (
	// ErrGatewayRequired is returned when no gateway is provided.
	ErrGatewayRequired = errors.New("gateway required")
)
