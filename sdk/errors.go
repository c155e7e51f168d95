package sdk

import "errors"

// Sentinel errors for common failure cases.
var (
	// ErrNoSynthesizer is returned by New and Open when synth is nil.
	ErrNoSynthesizer = errors.New("no synthesizer provided")

	// ErrClientClosed is returned by calls made after Close.
	ErrClientClosed = errors.New("client is closed")
)
