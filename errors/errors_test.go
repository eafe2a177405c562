package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseObjects,
				Kind:     KindNonZeroPadding,
				Offset:   0x1A4,
				Symbol:   "snow.data.SymbolColorData",
				Path:     []string{"vec", "x"},
				Expected: 0,
				Actual:   byte(7),
				Detail:   "alignment 16",
			},
			contains: []string{"[objects]", "non_zero_padding", "at 0x1A4", "snow.data.SymbolColorData.vec.x", "expected 0, actual 7", "alignment 16"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseHeader,
				Kind:   KindMagicMismatch,
				Offset: NoOffset,
			},
			contains: []string{"[header]", "magic_mismatch"},
			excludes: []string{" at ", "expected"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseContainer,
				Kind:   KindInvalidInput,
				Offset: 0,
				Detail: "bad container",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[container]", "at 0x0", "bad container", "caused by", "underlying error"},
		},
		{
			name:     "offsets render as hex",
			err:      UnexpectedGap(PhaseTables, 0x40, 0x48),
			contains: []string{"expected 0x48, actual 0x40"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(PhaseContainer, KindInvalidInput, cause, "read file")

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := NonZeroPadding(PhaseObjects, 12, byte(1))

	if !err.Is(&Error{Phase: PhaseObjects, Kind: KindNonZeroPadding}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseTables, Kind: KindNonZeroPadding}) {
		t.Error("Is should not match different phase")
	}
	if !err.Is(&Error{Kind: KindNonZeroPadding}) {
		t.Error("Is should match kind alone when phase is empty")
	}
	if err.Is(&Error{Kind: KindUnexpectedGap}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("decode file: %w", err)
	if !IsKind(wrapped, KindNonZeroPadding) {
		t.Error("IsKind should see through fmt wrapping")
	}
	kind, ok := KindOf(wrapped)
	if !ok || kind != KindNonZeroPadding {
		t.Errorf("KindOf = %v, %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf should fail for plain errors")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseObjects, KindRevisionMismatch).
		Offset(0x80).
		Symbol("snow.Foo").
		Path("bar").
		Expected(uint32(0xAB818101)).
		Actual(uint32(0x694F7865)).
		Cause(cause).
		Detail("version %d", 150000).
		Build()

	if err.Phase != PhaseObjects || err.Kind != KindRevisionMismatch {
		t.Errorf("Phase/Kind = %v/%v", err.Phase, err.Kind)
	}
	if err.Offset != 0x80 {
		t.Errorf("Offset = %v, want 0x80", err.Offset)
	}
	if err.Symbol != "snow.Foo" || len(err.Path) != 1 || err.Path[0] != "bar" {
		t.Errorf("Symbol/Path = %v/%v", err.Symbol, err.Path)
	}
	if err.Detail != "version 150000" {
		t.Errorf("Detail = %v", err.Detail)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if !strings.Contains(err.Error(), "expected 0xAB818101, actual 0x694F7865") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewDefaultsToNoOffset(t *testing.T) {
	err := New(PhaseRegistry, KindDuplicateType).Build()
	if err.Offset != NoOffset {
		t.Errorf("Offset = %d, want NoOffset", err.Offset)
	}
}

func TestWithPath(t *testing.T) {
	err := NonZeroPadding(PhaseObjects, 4, byte(1))
	var got error = err
	got = WithPath(got, "inner")
	got = WithPath(got, "outer")
	got = WithSymbol(got, "snow.Outer")
	got = WithSymbol(got, "snow.Ignored")

	var e *Error
	if !errors.As(got, &e) {
		t.Fatal("expected *Error")
	}
	if strings.Join(e.Path, ".") != "outer.inner" {
		t.Errorf("Path = %v", e.Path)
	}
	if e.Symbol != "snow.Outer" {
		t.Errorf("Symbol = %q, first symbol should win", e.Symbol)
	}

	plain := WithPath(errors.New("io"), "field")
	if !IsKind(plain, KindInvalidInput) {
		t.Errorf("plain errors should be wrapped, got %v", plain)
	}
	if WithPath(nil, "x") != nil {
		t.Error("nil stays nil")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
	}{
		{MagicMismatch(PhaseHeader, 0, []byte("RSZ\x00"), []byte("XXXX")), KindMagicMismatch},
		{UnsupportedFormatVersion(4, 0x11), KindUnsupportedFormatVersion},
		{MisalignedSeek(PhaseTables, 0x44, 0x60, 0x50, 16), KindMisalignedSeek},
		{UnknownType(0, 0xAAAA0000, 1), KindUnknownType},
		{RevisionMismatch(0, "snow.Foo", uint32(1), 2), KindRevisionMismatch},
		{StringHashMismatch(0, "a.user", 1, 2), KindStringHashMismatch},
		{InvalidUTF16(PhaseObjects, 0, 0xD800), KindInvalidUTF16},
		{InvalidUTF8(PhaseObjects, 0, []byte{0xff}), KindInvalidUTF8},
		{InvalidBoolean(PhaseObjects, 0, 2), KindInvalidBoolean},
		{OutOfBounds(PhaseObjects, 0, 10, 5), KindOutOfBounds},
		{OffsetOverflow(PhaseTables, 1, 2), KindOffsetOverflow},
		{Truncated(PhaseObjects, 0, 4, 2), KindTruncated},
		{TrailingData(0, 3), KindTrailingData},
		{InvalidEnum(PhaseObjects, 0, 9, "Zero"), KindInvalidEnum},
		{DuplicateType(1, "a", "b"), KindDuplicateType},
		{InvalidInput(PhaseContainer, "x"), KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
