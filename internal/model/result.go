// Package model defines shared types for the proxy.
package model

// ResultKind discriminates the outcome of normalizing an upstream response.
type ResultKind int

const (
	// KindOk means the provider signaled success and the payload matched
	// the expected shape.
	KindOk ResultKind = iota
	// KindShapeMismatch means the provider signaled success but the
	// expected payload substructure was absent or malformed. Read
	// endpoints degrade to an empty result; write endpoints fail.
	KindShapeMismatch
	// KindUpstreamFailure means the provider explicitly signaled failure
	// in its own envelope (success=false, or status=0).
	KindUpstreamFailure
)

// Result is the tagged outcome of the response normalizer. Exactly one of
// the variants applies; Payload is meaningful only when Kind is KindOk.
type Result[T any] struct {
	Kind    ResultKind
	Payload T
	Message string // provider failure message, when Kind is KindUpstreamFailure
}

// Ok wraps a payload in a successful Result.
func Ok[T any](payload T) Result[T] {
	return Result[T]{Kind: KindOk, Payload: payload}
}

// ShapeMismatch marks a 2xx response whose payload did not match the contract.
func ShapeMismatch[T any]() Result[T] {
	return Result[T]{Kind: KindShapeMismatch}
}

// UpstreamFailure marks a provider-signaled failure.
func UpstreamFailure[T any](message string) Result[T] {
	return Result[T]{Kind: KindUpstreamFailure, Message: message}
}
