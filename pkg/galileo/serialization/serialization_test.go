package serialization

import (
	"bytes"
	"math"
	"testing"
)

func Test_PrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.WriteBool(true); err != nil {
		t.Fatalf("write bool: %v", err)
	}
	if err := w.WriteInt16(-12); err != nil {
		t.Fatalf("write int16: %v", err)
	}
	if err := w.WriteInt32(1 << 30); err != nil {
		t.Fatalf("write int32: %v", err)
	}
	if err := w.WriteInt64(-(1 << 60)); err != nil {
		t.Fatalf("write int64: %v", err)
	}
	if err := w.WriteUvarint(300); err != nil {
		t.Fatalf("write uvarint: %v", err)
	}
	if err := w.WriteFloat64(math.Pi); err != nil {
		t.Fatalf("write float64: %v", err)
	}
	if err := w.WriteString("humidity=32.3"); err != nil {
		t.Fatalf("write string: %v", err)
	}
	if err := w.WriteBytes([]byte{0, 1, 2, 255}); err != nil {
		t.Fatalf("write bytes: %v", err)
	}

	r := NewReader(buf.Bytes())
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Errorf("read bool: %v %v", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -12 {
		t.Errorf("read int16: %v %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != 1<<30 {
		t.Errorf("read int32: %v %v", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -(1<<60) {
		t.Errorf("read int64: %v %v", v, err)
	}
	if v, err := r.ReadUvarint(); err != nil || v != 300 {
		t.Errorf("read uvarint: %v %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != math.Pi {
		t.Errorf("read float64: %v %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "humidity=32.3" {
		t.Errorf("read string: %q %v", v, err)
	}
	if v, err := r.ReadBytes(); err != nil || !bytes.Equal(v, []byte{0, 1, 2, 255}) {
		t.Errorf("read bytes: %v %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("expected empty reader, %d bytes left", r.Remaining())
	}
}

type pair struct {
	key   string
	value float64
}

func (p *pair) Serialize(w *Writer) error {
	if err := w.WriteString(p.key); err != nil {
		return err
	}
	return w.WriteFloat64(p.value)
}

func Test_NestedSerializable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteSerializable(&pair{key: "temperature", value: 300}); err != nil {
		t.Fatalf("write nested: %v", err)
	}
	if err := w.WriteString("after"); err != nil {
		t.Fatalf("write trailer: %v", err)
	}

	r := NewReader(buf.Bytes())
	nested, err := r.ReadSerializable()
	if err != nil {
		t.Fatalf("read nested: %v", err)
	}
	key, err := nested.ReadString()
	if err != nil || key != "temperature" {
		t.Errorf("nested key: %q %v", key, err)
	}
	value, err := nested.ReadFloat64()
	if err != nil || value != 300 {
		t.Errorf("nested value: %v %v", value, err)
	}

	// The outer reader must have skipped the nested blob entirely.
	trailer, err := r.ReadString()
	if err != nil || trailer != "after" {
		t.Errorf("trailer: %q %v", trailer, err)
	}
}

func Test_ShortReadsFail(t *testing.T) {
	r := NewReader([]byte{0, 0, 0, 9, 'a'})
	if _, err := r.ReadString(); err == nil {
		t.Error("expected short read error")
	}
}

func Test_NegativeLengthFails(t *testing.T) {
	r := NewReader([]byte{0xff, 0xff, 0xff, 0xff})
	if _, err := r.ReadBytes(); err == nil {
		t.Error("expected negative length error")
	}
}
