package family

import "errors"

var (
	// ErrConfiguration indicates invalid family or domain parameters. It is
	// returned before any sampling happens.
	ErrConfiguration = errors.New("family: invalid configuration")
	// ErrExhaustedPool indicates that no active family has any selection
	// probability left.
	ErrExhaustedPool = errors.New("family: no active family left to sample")
)
