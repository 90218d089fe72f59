package rtcp

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func nackPacket(entries ...[2]uint16) []byte {
	total := headerLen + 4 + 4 + len(entries)*nackEntrySize
	buf := make([]byte, total)
	copy(buf[0:4], header(fmtGenericNACK, 205, total))
	binary.BigEndian.PutUint32(buf[4:8], 0x01020304)
	binary.BigEndian.PutUint32(buf[8:12], 0x05060708)
	off := headerLen + 4 + 4
	for _, e := range entries {
		binary.BigEndian.PutUint16(buf[off:off+2], e[0])
		binary.BigEndian.PutUint16(buf[off+2:off+4], e[1])
		off += nackEntrySize
	}
	return buf
}

func TestGetNacks(t *testing.T) {
	tests := []struct {
		name    string
		entries [][2]uint16
		want    []uint16
	}{
		{
			name:    "order-preserving blp expansion",
			entries: [][2]uint16{{100, 0x0005}},
			want:    []uint16{100, 101, 103},
		},
		{
			name:    "end-to-end scenario 1",
			entries: [][2]uint16{{1000, 0x8001}},
			want:    []uint16{1000, 1001, 1016},
		},
		{
			name:    "no lost packets beyond pid",
			entries: [][2]uint16{{50, 0}},
			want:    []uint16{50},
		},
		{
			name:    "multiple entries preserve packet order",
			entries: [][2]uint16{{10, 0x0001}, {20, 0x0002}},
			want:    []uint16{10, 11, 20, 22},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetNacks(nackPacket(tc.entries...))
			if err != nil {
				t.Fatalf("GetNacks: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("GetNacks() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGetNacks_TruncatedFeedbackBody(t *testing.T) {
	// Declared length is valid but the body is too short to hold the
	// sender and media SSRC fields.
	buf := make([]byte, 8)
	copy(buf[0:4], header(fmtGenericNACK, 205, 8))
	if _, err := GetNacks(buf); err != ErrMalformed {
		t.Fatalf("GetNacks() error = %v, want ErrMalformed", err)
	}
}

func TestGetNacks_IgnoresNonNackSubPackets(t *testing.T) {
	buf := append([]byte{}, rrPacket(1, 2)...)
	buf = append(buf, nackPacket([2]uint16{5, 1})...)
	got, err := GetNacks(buf)
	if err != nil {
		t.Fatalf("GetNacks: %v", err)
	}
	want := []uint16{5, 6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("GetNacks() = %v, want %v", got, want)
	}
}
