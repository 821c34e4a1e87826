package network

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func TestDMRDEncodeParse(t *testing.T) {
	tests := []struct {
		name string
		in   Data
		slot byte
	}{
		{
			name: "group voice sync ts1",
			in:   Data{Seq: 7, SrcID: 3120001, DstID: 91, Slot: 1, Group: true, FrameType: FrameVoiceSync, StreamID: 0xDEADBEEF},
			slot: 0x10,
		},
		{
			name: "private voice burst C ts2",
			in:   Data{SrcID: 1, DstID: 3120002, Slot: 2, FrameType: FrameVoice, DataType: 2},
			slot: 0x80 | 0x40 | 0x02,
		},
		{
			name: "group terminator ts2",
			in:   Data{SrcID: 5, DstID: 9, Slot: 2, Group: true, FrameType: FrameDataSync, DataType: 0x02, BER: 3, RSSI: 71},
			slot: 0x80 | 0x20 | 0x02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			for i := range in.Payload {
				in.Payload[i] = byte(i)
			}
			in.RepeaterID = 312000101

			b := in.Encode()
			if len(b) != DMRDPacketSizeExtended {
				t.Fatalf("encoded %d bytes, want %d", len(b), DMRDPacketSizeExtended)
			}
			if string(b[0:4]) != "DMRD" {
				t.Errorf("signature = %q", b[0:4])
			}
			if b[15] != tt.slot {
				t.Errorf("slot byte = %#02x, want %#02x", b[15], tt.slot)
			}
			if got := binary.BigEndian.Uint32(b[11:15]); got != in.RepeaterID {
				t.Errorf("repeater id = %d", got)
			}

			out, err := ParseDMRD(b)
			if err != nil {
				t.Fatalf("ParseDMRD: %v", err)
			}
			if *out != in {
				t.Errorf("parsed %+v\nwant %+v", *out, in)
			}
		})
	}
}

func TestParseDMRDPlainLength(t *testing.T) {
	d := Data{SrcID: 1, DstID: 2, Slot: 1, Group: true, BER: 9, RSSI: 9}
	b := d.Encode()[:DMRDPacketSize]

	out, err := ParseDMRD(b)
	if err != nil {
		t.Fatalf("ParseDMRD: %v", err)
	}
	if out.BER != 0 || out.RSSI != 0 {
		t.Errorf("link quality read from a plain packet: %d/%d", out.BER, out.RSSI)
	}
}

func TestParseDMRDErrors(t *testing.T) {
	good := (&Data{Slot: 1}).Encode()
	bad := append([]byte(nil), good...)
	copy(bad, "DMRX")

	tests := []struct {
		name string
		in   []byte
	}{
		{"short", good[:20]},
		{"long", append(append([]byte(nil), good...), 0)},
		{"signature", bad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDMRD(tt.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRPTKHash(t *testing.T) {
	salt := []byte{0x01, 0x02, 0x03, 0x04}
	b := encodeRPTK(312000, salt, "passw0rd")

	if len(b) != RPTKPacketSize || !hasPrefix(b, PacketTypeRPTK) {
		t.Fatalf("bad RPTK framing: %d bytes", len(b))
	}
	want := sha256.Sum256(append(append([]byte(nil), salt...), "passw0rd"...))
	if !bytes.Equal(b[8:], want[:]) {
		t.Errorf("hash = %x, want %x", b[8:], want)
	}
}

func TestRPTCFields(t *testing.T) {
	info := RepeaterInfo{
		Callsign:   "N0CALL",
		RXFreq:     449000000,
		TXFreq:     444000000,
		ColorCode:  7,
		Latitude:   38.1234,
		Longitude:  -90.5678,
		SoftwareID: "dvmhost-go",
	}
	b := encodeRPTC(312000101, info)
	if len(b) != RPTCPacketSize {
		t.Fatalf("RPTC is %d bytes", len(b))
	}

	id, got, err := parseRPTC(b)
	if err != nil {
		t.Fatalf("parseRPTC: %v", err)
	}
	if id != 312000101 {
		t.Errorf("id = %d", id)
	}
	if got.Callsign != "N0CALL" || got.RXFreq != info.RXFreq || got.TXFreq != info.TXFreq ||
		got.ColorCode != 7 || got.SoftwareID != "dvmhost-go" || got.Slots != "4" {
		t.Errorf("parsed %+v", got)
	}
	if string(b[38:46]) != "038.1234" || string(b[46:55]) != "-090.5678" {
		t.Errorf("lat/lon = %q %q", b[38:46], b[46:55])
	}
}

func TestControlPackets(t *testing.T) {
	if b := encodeRPTL(7); len(b) != RPTLPacketSize || !hasPrefix(b, "RPTL") || binary.BigEndian.Uint32(b[4:]) != 7 {
		t.Errorf("RPTL = %x", b)
	}
	if b := encodeRPTPING(7); len(b) != RPTPINGPacketSize || !hasPrefix(b, "RPTPING") {
		t.Errorf("RPTPING = %x", b)
	}
	if b := encodeRPTCL(7); len(b) != RPTCLPacketSize || !hasPrefix(b, "RPTCL") {
		t.Errorf("RPTCL = %x", b)
	}
}
