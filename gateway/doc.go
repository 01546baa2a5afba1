// Package gateway is the request-level front of the query service.
//
// It checks the requested mode against the four supported ones, delegates to
// the engine, removes log lines that leak into answers and wraps everything
// in an Envelope. An unknown mode never reaches the engine.
package gateway
