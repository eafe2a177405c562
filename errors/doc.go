// Package errors provides structured error types for the RSZ decoder.
//
// Errors are categorized by Phase (which decode stage failed) and Kind (which
// layout assumption was violated). The Error type carries the absolute byte
// offset, the expected and actual values, the schema symbol and the field path,
// because these messages are the primary tool for correcting schema declarations.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseObjects, errors.KindNonZeroPadding).
//		Offset(0x1A4).
//		Symbol("snow.data.SymbolColorData").
//		Path("vec").
//		Detail("byte 0x%02x in alignment padding", b).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedGap(errors.PhaseTables, 0x40, 0x48)
//	err := errors.OutOfBounds(errors.PhaseObjects, offset, 12, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches on Kind alone.
package errors
