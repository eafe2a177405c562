package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates which decode stage produced the error
type Phase string

const (
	PhaseHeader    Phase = "header"    // block header
	PhaseTables    Phase = "tables"    // object index, descriptor and string tables
	PhaseObjects   Phase = "objects"   // data segment
	PhaseRegistry  Phase = "registry"  // type registration
	PhaseContainer Phase = "container" // formats embedding an RSZ block
	PhaseUnmarshal Phase = "unmarshal" // typed access into Go values
)

// Kind categorizes the violated assumption
type Kind string

const (
	KindMagicMismatch            Kind = "magic_mismatch"
	KindUnsupportedFormatVersion Kind = "unsupported_format_version"
	KindNonZeroPadding           Kind = "non_zero_padding"
	KindUnexpectedGap            Kind = "unexpected_gap"
	KindMisalignedSeek           Kind = "misaligned_seek"
	KindUnknownType              Kind = "unknown_type"
	KindRevisionMismatch         Kind = "revision_mismatch"
	KindStringHashMismatch       Kind = "string_hash_mismatch"
	KindInvalidUTF16             Kind = "invalid_utf16"
	KindInvalidUTF8              Kind = "invalid_utf8"
	KindInvalidBoolean           Kind = "invalid_boolean"
	KindOutOfBounds              Kind = "index_out_of_bounds"
	KindOffsetOverflow           Kind = "offset_overflow"
	KindTruncated                Kind = "truncated"
	KindTrailingData             Kind = "trailing_data"
	KindNullReference            Kind = "null_reference"
	KindSharedChild              Kind = "shared_child"
	KindCyclicReference          Kind = "cyclic_reference"
	KindUnreferencedObject       Kind = "unreferenced_object"
	KindExternMismatch           Kind = "extern_mismatch"
	KindInvalidEnum              Kind = "invalid_enum"
	KindDuplicateType            Kind = "duplicate_type"
	KindArrayLength              Kind = "array_length"
	KindTypeMismatch             Kind = "type_mismatch"
	KindInvalidSentinel          Kind = "invalid_sentinel"
	KindInvalidInput             Kind = "invalid_input"
)

// NoOffset marks an error that is not tied to a byte position.
const NoOffset int64 = -1

// Error is the structured error type used throughout the decoder
type Error struct {
	Expected any
	Actual   any
	Cause    error
	Phase    Phase
	Kind     Kind
	Symbol   string
	Detail   string
	Path     []string
	Offset   int64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at 0x%X", e.Offset)
	}

	if e.Symbol != "" || len(e.Path) > 0 {
		b.WriteString(" in ")
		b.WriteString(e.Symbol)
		if len(e.Path) > 0 {
			if e.Symbol != "" {
				b.WriteByte('.')
			}
			b.WriteString(strings.Join(e.Path, "."))
		}
	}

	hasValues := e.Expected != nil || e.Actual != nil
	if hasValues {
		fmt.Fprintf(&b, ": expected %v, actual %v", formatValue(e.Expected), formatValue(e.Actual))
	}

	if e.Detail != "" {
		if hasValues {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<none>"
	case int64:
		return fmt.Sprintf("0x%X", x)
	case uint64:
		return fmt.Sprintf("0x%X", x)
	case uint32:
		return fmt.Sprintf("0x%08X", x)
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprint(x)
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a Phase matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// WithPath prepends a field name to the error path.
// Errors that are not *Error are wrapped as invalid input.
func WithPath(err error, name string) error {
	if err == nil || name == "" {
		return err
	}
	var e *Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{name}, e.Path...)
		return err
	}
	return &Error{
		Phase:  PhaseObjects,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Path:   []string{name},
		Cause:  err,
	}
}

// WithSymbol fills in the schema symbol if none is set yet.
func WithSymbol(err error, symbol string) error {
	var e *Error
	if stderrors.As(err, &e) && e.Symbol == "" {
		e.Symbol = symbol
	}
	return err
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is forwards to the standard library so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library so callers need a single import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Offset sets the absolute byte offset
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Symbol sets the schema symbol
func (b *Builder) Symbol(s string) *Builder {
	b.err.Symbol = s
	return b
}

// Expected sets the value the format was assumed to contain
func (b *Builder) Expected(v any) *Builder {
	b.err.Expected = v
	return b
}

// Actual sets the value that was found
func (b *Builder) Actual(v any) *Builder {
	b.err.Actual = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MagicMismatch creates a magic tag mismatch error
func MagicMismatch(phase Phase, offset int64, expected, actual []byte) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindMagicMismatch,
		Offset:   offset,
		Expected: string(expected),
		Actual:   string(actual),
	}
}

// UnsupportedFormatVersion creates an unknown block version error
func UnsupportedFormatVersion(offset int64, version uint32) *Error {
	return &Error{
		Phase:  PhaseHeader,
		Kind:   KindUnsupportedFormatVersion,
		Offset: offset,
		Actual: version,
	}
}

// NonZeroPadding creates an error for a padding byte or field that is not zero
func NonZeroPadding(phase Phase, offset int64, value any) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNonZeroPadding,
		Offset:   offset,
		Expected: 0,
		Actual:   value,
	}
}

// UnexpectedGap creates an error for a no-op seek that would have moved
func UnexpectedGap(phase Phase, offset, target int64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnexpectedGap,
		Offset:   offset,
		Expected: target,
		Actual:   offset,
	}
}

// MisalignedSeek creates an error for an aligned position that differs from the declared one
func MisalignedSeek(phase Phase, offset, target, aligned int64, align uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindMisalignedSeek,
		Offset:   offset,
		Expected: target,
		Actual:   aligned,
		Detail:   fmt.Sprintf("align %d", align),
	}
}

// UnknownType creates an error for a structural hash with no registry entry
func UnknownType(offset int64, hash uint32, index int) *Error {
	return &Error{
		Phase:  PhaseObjects,
		Kind:   KindUnknownType,
		Offset: offset,
		Actual: hash,
		Detail: fmt.Sprintf("descriptor %d", index),
	}
}

// RevisionMismatch creates an error for a revision checksum the schema does not declare
func RevisionMismatch(offset int64, symbol string, expected any, crc uint32) *Error {
	return &Error{
		Phase:    PhaseObjects,
		Kind:     KindRevisionMismatch,
		Offset:   offset,
		Symbol:   symbol,
		Expected: expected,
		Actual:   crc,
	}
}

// StringHashMismatch creates a content hash validation error
func StringHashMismatch(offset int64, s string, declared, computed uint32) *Error {
	return &Error{
		Phase:    PhaseTables,
		Kind:     KindStringHashMismatch,
		Offset:   offset,
		Expected: declared,
		Actual:   computed,
		Detail:   fmt.Sprintf("string %q", s),
	}
}

// InvalidUTF16 creates an invalid UTF-16 error
func InvalidUTF16(phase Phase, offset int64, unit uint16) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF16,
		Offset: offset,
		Detail: fmt.Sprintf("unpaired surrogate 0x%04X", unit),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, offset int64, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidBoolean creates an error for a boolean byte other than 0 or 1
func InvalidBoolean(phase Phase, offset int64, v byte) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidBoolean,
		Offset:   offset,
		Expected: "0 or 1",
		Actual:   v,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, offset int64, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Offset: offset,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Actual: index,
	}
}

// OffsetOverflow creates an error for base+offset arithmetic that does not fit
func OffsetOverflow(phase Phase, base, offset uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOffsetOverflow,
		Offset: NoOffset,
		Detail: fmt.Sprintf("base 0x%X + offset 0x%X overflows", base, offset),
	}
}

// Truncated creates an error for a read past the end of the input
func Truncated(phase Phase, offset int64, want, have int) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTruncated,
		Offset:   offset,
		Expected: want,
		Actual:   have,
		Detail:   "bytes available",
	}
}

// TrailingData creates an error for unconsumed bytes at the end of the data segment
func TrailingData(offset int64, remaining int) *Error {
	return &Error{
		Phase:  PhaseObjects,
		Kind:   KindTrailingData,
		Offset: offset,
		Detail: fmt.Sprintf("%d bytes left over", remaining),
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, offset int64, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Offset: offset,
		Actual: value,
		Detail: fmt.Sprintf("invalid value for %s", enumType),
	}
}

// DuplicateType creates a registration error for a hash registered twice
func DuplicateType(hash uint32, existing, incoming string) *Error {
	return &Error{
		Phase:  PhaseRegistry,
		Kind:   KindDuplicateType,
		Offset: NoOffset,
		Actual: hash,
		Detail: fmt.Sprintf("%s already registered, cannot register %s", existing, incoming),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}
