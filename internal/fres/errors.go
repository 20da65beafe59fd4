package fres

import "errors"

var (
	// ErrInconsistentSamplerTable reports texture/sampler arrays whose
	// counts or names do not line up.
	ErrInconsistentSamplerTable = errors.New("inconsistent sampler table")
	// ErrBadReference reports a shape that points at a vertex buffer or
	// material the model does not have.
	ErrBadReference = errors.New("bad reference")
	// ErrUnsupportedAttribute is returned when decoding a vertex
	// attribute whose format has no decoder.
	ErrUnsupportedAttribute = errors.New("unsupported attribute format")
)
