package server

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := []string{`{"type":"ACTION_REQUEST"}`, "", `{"a":1}`}
	for _, p := range payloads {
		if err := WriteFrame(&buf, []byte(p)); err != nil {
			t.Fatalf("WriteFrame(%q): %v", p, err)
		}
	}
	for _, p := range payloads {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if string(got) != p {
			t.Errorf("frame = %q, want %q", got, p)
		}
	}
}

func TestFrameHeaderIsBigEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("abcd")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	header := buf.Bytes()[:frameHeaderSize]
	if got := binary.BigEndian.Uint64(header); got != 4 {
		t.Errorf("header length = %d, want 4", got)
	}
}

func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint64(header[:], maxFrameSize+1)
	buf.Write(header[:])
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatalf("oversized frame accepted")
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint64(header[:], 10)
	buf.Write(header[:])
	buf.WriteString("short")
	if _, err := ReadFrame(&buf); err == nil {
		t.Fatalf("truncated frame accepted")
	}
}
