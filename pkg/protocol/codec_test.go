package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 300, 16383, 16384, 1<<32 - 1, 1<<64 - 1}

	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
		if !d.EOF() {
			t.Errorf("value %d left %d bytes unread", v, d.Remaining())
		}
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 63, -64, 1000, -1000, 1 << 40, -(1 << 40)}

	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadSvarint()
		if err != nil {
			t.Fatalf("ReadSvarint(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
	}
}

func TestSmallValuesEncodeSmall(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(5)
	if e.Len() != 1 {
		t.Errorf("uvarint 5 took %d bytes, want 1", e.Len())
	}

	e.Reset()
	e.WriteSvarint(-1)
	if e.Len() != 1 {
		t.Errorf("svarint -1 took %d bytes, want 1", e.Len())
	}
}

func TestUvarintOverflow(t *testing.T) {
	d := NewDecoder(bytes.Repeat([]byte{0x80}, 11))
	if _, err := d.ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("ReadUvarint() = %v, want ErrVarintOverflow", err)
	}
}

func TestUvarintTruncated(t *testing.T) {
	d := NewDecoder([]byte{0x80, 0x80})
	if _, err := d.ReadUvarint(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUvarint() = %v, want ErrUnexpectedEOF", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	strs := []string{"", "b1", "hello world", "ünïcødé ♥", string(make([]byte, 1000))}

	for _, s := range strs {
		e := NewEncoder()
		e.WriteString(s)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q) error: %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestStringTooLong(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxStringLen + 1)

	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("ReadString() = %v, want ErrStringTooLong", err)
	}
}

func TestStringTruncated(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(10)
	e.WriteBytes([]byte("short"))

	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadString() = %v, want ErrUnexpectedEOF", err)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteBool(false)

	d := NewDecoder(e.Bytes())
	if v, err := d.ReadBool(); err != nil || v != true {
		t.Errorf("ReadBool() = %v, %v; want true", v, err)
	}
	if v, err := d.ReadBool(); err != nil || v != false {
		t.Errorf("ReadBool() = %v, %v; want false", v, err)
	}
}

func TestBoolRejectsJunk(t *testing.T) {
	d := NewDecoder([]byte{0x02})
	if _, err := d.ReadBool(); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("ReadBool(0x02) = %v, want ErrInvalidBool", err)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteUint16(0xBEEF)
	e.WriteUint32(0xDEADBEEF)

	d := NewDecoder(e.Bytes())
	if v, err := d.ReadUint16(); err != nil || v != 0xBEEF {
		t.Errorf("ReadUint16() = %#x, %v", v, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadUint32() = %#x, %v", v, err)
	}
}

func TestMilliRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.25, 0.001, -0.001, 48, 123.456}

	for _, v := range values {
		e := NewEncoder()
		e.WriteMilli(v)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadMilli()
		if err != nil {
			t.Fatalf("ReadMilli(%v) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %v -> %v", v, got)
		}
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("something")
	e.Reset()

	if e.Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", e.Len())
	}

	e.WriteByte(0x07)
	if !bytes.Equal(e.Bytes(), []byte{0x07}) {
		t.Errorf("Bytes() = %v after Reset+write, want [0x07]", e.Bytes())
	}
}
