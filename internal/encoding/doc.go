// Package encoding implements the variable-length payloads of the capture format.
//
// These implementations are internal to dbuswire and are not part of the public API.
// The capture package is the only consumer.
package encoding
