package user

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/errors"
	"github.com/wippyai/rsz/rsztest"
)

const answerHash = 0xAAAA0000

var answerSchema = &rsz.Schema{
	Symbol: "test.Answer",
	Hash:   answerHash,
	Fields: []rsz.Field{rsz.U32("value"), rsz.ExternOpt("source")},
}

func testRegistry(t *testing.T) *rsz.Registry {
	t.Helper()
	reg, err := rsz.NewRegistry(answerSchema.TypeInfo())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func testUser() rsztest.User {
	w := rsztest.NewWriter()
	w.U32(42)
	w.Ref(0)
	return rsztest.User{
		Resources: []string{"Assets/answer.tex"},
		Children:  []rsztest.UserChild{{Hash: 0x1234, Name: "data/child.user"}},
		Block: rsztest.Block{
			Roots:       []uint32{1},
			Descriptors: []uint64{rsztest.Desc(answerHash, 0)},
			Data:        w.Bytes(),
		},
	}
}

func TestParse(t *testing.T) {
	data, l := testUser().Build()
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Resources) != 1 || f.Resources[0] != "Assets/answer.tex" {
		t.Errorf("Resources = %v", f.Resources)
	}
	if len(f.Children) != 1 || f.Children[0] != (Child{Hash: 0x1234, Name: "data/child.user"}) {
		t.Errorf("Children = %v", f.Children)
	}
	if f.RSZOffset != int64(l.RSZ) {
		t.Errorf("RSZOffset = 0x%X, want 0x%X", f.RSZOffset, l.RSZ)
	}
	if !IsUser(data) || IsUser(data[l.RSZ:]) {
		t.Error("IsUser should only accept the container magic")
	}
}

func TestDecodeSingle(t *testing.T) {
	data, l := testUser().Build()
	f, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	obj, err := f.DecodeSingle(testRegistry(t), rsz.Options{})
	if err != nil {
		t.Fatalf("DecodeSingle: %v", err)
	}
	if obj.Offset != int64(l.Block.Data) {
		t.Errorf("Offset = 0x%X, want 0x%X", obj.Offset, l.Block.Data)
	}
	v, _ := obj.Value.(*rsz.Record).Get("value")
	if got, _ := v.(*rsz.Prim).Uint(); got != 42 {
		t.Errorf("value = %d", got)
	}

	blk, err := f.Block()
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if blk.Base != f.RSZOffset || len(blk.Descriptors) != 2 {
		t.Errorf("block = %+v", blk.Header)
	}
}

func TestDecodeWithExtern(t *testing.T) {
	u := testUser()
	w := rsztest.NewWriter()
	w.U32(1)
	w.Ref(1)
	u.Block = rsztest.Block{
		Roots:       []uint32{2},
		Descriptors: []uint64{rsztest.Desc(0xCCCC0000, 0), rsztest.Desc(answerHash, 0)},
		Externs:     []rsztest.Extern{{Slot: 1, Path: "data/source.user"}},
		Data:        w.Bytes(),
	}
	f, err := Parse(u.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g, err := f.Decode(testRegistry(t), rsz.Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ext := g.Object(1); ext == nil || ext.Extern != "data/source.user" {
		t.Errorf("object 1 = %+v", ext)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.user")
	if err := os.WriteFile(path, testUser().Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Value  uint32
		Source *string
	}
	if err := Load(path, testRegistry(t), rsz.Options{}, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Value != 42 || got.Source != nil {
		t.Errorf("got %+v", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.user")); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	le := binary.LittleEndian
	tests := []struct {
		name   string
		mutate func(data []byte, l rsztest.UserLayout) []byte
		kind   errors.Kind
	}{
		{
			name: "magic",
			mutate: func(data []byte, _ rsztest.UserLayout) []byte {
				data[0] = 'X'
				return data
			},
			kind: errors.KindMagicMismatch,
		},
		{
			name: "header padding",
			mutate: func(data []byte, _ rsztest.UserLayout) []byte {
				data[12] = 1
				return data
			},
			kind: errors.KindNonZeroPadding,
		},
		{
			name: "child padding",
			mutate: func(data []byte, l rsztest.UserLayout) []byte {
				data[l.ChildList+4] = 1
				return data
			},
			kind: errors.KindNonZeroPadding,
		},
		{
			name: "resource count",
			mutate: func(data []byte, _ rsztest.UserLayout) []byte {
				le.PutUint32(data[4:], 0xFFFFFFFF)
				return data
			},
			kind: errors.KindTruncated,
		},
		{
			name: "resource list misplaced",
			mutate: func(data []byte, l rsztest.UserLayout) []byte {
				le.PutUint64(data[16:], uint64(l.ResourceList+16))
				return data
			},
			kind: errors.KindMisalignedSeek,
		},
		{
			name: "name gap",
			mutate: func(data []byte, l rsztest.UserLayout) []byte {
				le.PutUint64(data[l.ResourceList:], uint64(l.Names[0]+2))
				return data
			},
			kind: errors.KindUnexpectedGap,
		},
		{
			name: "rsz offset past end",
			mutate: func(data []byte, _ rsztest.UserLayout) []byte {
				le.PutUint64(data[32:], 1<<40)
				return data
			},
			kind: errors.KindOutOfBounds,
		},
		{
			name: "rsz offset misplaced",
			mutate: func(data []byte, l rsztest.UserLayout) []byte {
				le.PutUint64(data[32:], uint64(l.RSZ+16))
				return data
			},
			kind: errors.KindMisalignedSeek,
		},
		{
			name: "truncated file",
			mutate: func(data []byte, l rsztest.UserLayout) []byte {
				return data[:l.Names[1]+2]
			},
			kind: errors.KindOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, l := testUser().Build()
			_, err := Parse(tt.mutate(data, l))
			if !errors.IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want %s", err, tt.kind)
			}
			var e *errors.Error
			if errors.As(err, &e) && e.Phase != errors.PhaseContainer {
				t.Errorf("Phase = %s, want container", e.Phase)
			}
		})
	}
}

func TestParseNameRules(t *testing.T) {
	u := testUser()
	u.Resources = []string{"data/wrong.user"}
	if _, err := Parse(u.Bytes()); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("user resource: err = %v", err)
	}

	u = testUser()
	u.Children[0].Name = "data/child.tex"
	if _, err := Parse(u.Bytes()); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("non-user child: err = %v", err)
	}
}

func FuzzParse(f *testing.F) {
	f.Add(testUser().Bytes())
	f.Add([]byte("USR\x00"))
	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Parse(data)
		if err != nil {
			return
		}
		if file.RSZOffset > int64(len(data)) {
			t.Fatalf("RSZOffset 0x%X past end", file.RSZOffset)
		}
	})
}
