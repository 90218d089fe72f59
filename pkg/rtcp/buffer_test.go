package rtcp

import "testing"

func TestReadWriteUint32At(t *testing.T) {
	buf := make([]byte, 8)
	if !writeUint32At(buf, 2, 0xDEADBEEF) {
		t.Fatal("writeUint32At returned false for in-bounds offset")
	}
	got, ok := readUint32At(buf, 2)
	if !ok || got != 0xDEADBEEF {
		t.Fatalf("readUint32At = (%#x, %v), want (0xDEADBEEF, true)", got, ok)
	}
}

func TestReadWriteUint32At_OutOfBounds(t *testing.T) {
	buf := make([]byte, 4)
	if writeUint32At(buf, 1, 1) {
		t.Fatal("writeUint32At returned true for out-of-bounds offset")
	}
	if writeUint32At(buf, -1, 1) {
		t.Fatal("writeUint32At returned true for negative offset")
	}
	if _, ok := readUint32At(buf, 1); ok {
		t.Fatal("readUint32At returned ok=true for out-of-bounds offset")
	}
}

func TestReadWriteUint16At(t *testing.T) {
	buf := make([]byte, 4)
	if !writeUint16At(buf, 1, 0xCAFE) {
		t.Fatal("writeUint16At returned false for in-bounds offset")
	}
	got, ok := readUint16At(buf, 1)
	if !ok || got != 0xCAFE {
		t.Fatalf("readUint16At = (%#x, %v), want (0xCAFE, true)", got, ok)
	}
}

func TestReadWriteUint16At_OutOfBounds(t *testing.T) {
	buf := make([]byte, 2)
	if _, ok := readUint16At(buf, 1); ok {
		t.Fatal("readUint16At returned ok=true for out-of-bounds offset")
	}
}
