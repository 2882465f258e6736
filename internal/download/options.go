package download

import (
	"errors"
	"hash"
)

// Option configures a single [Save].
//
// WithChecksum verifies the written bytes against expected, a hex digest
// produced by h.
//
// WithProgress logs progress at most once per second.
type Option func(*options) error

type options struct {
	checksum *checksumVerifier
	progress bool
}

func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}
