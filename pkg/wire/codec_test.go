package wire

import (
	"bytes"
	"testing"
)

func TestRoundTripSimple(t *testing.T) {
	raw := EncodeSimple(LIST, 42, []byte("a.txt"))
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Tag != LIST || p.Seq != 42 || p.HasParam {
		t.Errorf("unexpected packet %+v", p)
	}
	if !bytes.Equal(p.Data, []byte("a.txt")) {
		t.Errorf("data mismatch: %q", p.Data)
	}
}

func TestRoundTripComplex(t *testing.T) {
	raw := EncodeComplex(ADD, 7, 2000, []byte("big"))
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if p.Tag != ADD || p.Seq != 7 || !p.HasParam || p.Param != 2000 {
		t.Errorf("unexpected packet %+v", p)
	}
	if !bytes.Equal(p.Data, []byte("big")) {
		t.Errorf("data mismatch: %q", p.Data)
	}
}

func TestRoundTripEmptyData(t *testing.T) {
	raw := EncodeSimple(LIST, 1, nil)
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(p.Data) != 0 {
		t.Errorf("expected empty data, got %q", p.Data)
	}
}

func TestDecodeShortPacketRejected(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	if err == nil {
		t.Error("expected error for short packet")
	}
}

func TestDecodeUnknownTagRejected(t *testing.T) {
	raw := EncodeSimple(Tag("BOGUS"), 1, nil)
	_, err := Decode(raw)
	if err == nil {
		t.Error("expected error for unknown tag")
	}
}

func TestDecodeComplexTagTooShortRejected(t *testing.T) {
	// Simple-length packet but with a complex tag: missing the param field.
	raw := EncodeSimple(ADD, 1, nil)
	_, err := Decode(raw)
	if err == nil {
		t.Error("expected error for complex tag missing param")
	}
}

func TestDecodeTrailingNULNotSignificant(t *testing.T) {
	raw := EncodeSimple(LIST, 1, []byte("a.txt\x00\x00"))
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	// Trailing NULs are preserved in Data (not significant to length
	// validation); the server's dispatch handlers trim them before
	// treating Data as text.
	if len(p.Data) != len("a.txt\x00\x00") {
		t.Errorf("unexpected data length %d", len(p.Data))
	}
}

func TestTwoHELLOsIndependentSeqs(t *testing.T) {
	p1 := EncodeSimple(HELLO, 100, nil)
	p2 := EncodeSimple(HELLO, 101, nil)
	d1, _ := Decode(p1)
	d2, _ := Decode(p2)
	if d1.Seq == d2.Seq {
		t.Error("expected distinct seqs")
	}
}
