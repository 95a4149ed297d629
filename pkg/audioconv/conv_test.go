package audioconv

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/go-audio/wav"
)

func TestEncodeWAV_RoundTrip(t *testing.T) {
	const rate = 16000

	// One 440 Hz cycle-ish worth of samples.
	pcm := make([]float32, 1600)
	for i := range pcm {
		pcm[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}

	data, err := EncodeWAV(pcm, rate)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if dec.SampleRate != rate {
		t.Errorf("sample rate %d, want %d", dec.SampleRate, rate)
	}
	if dec.NumChans != 1 {
		t.Errorf("channels %d, want 1", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("bit depth %d, want 16", dec.BitDepth)
	}
	if len(buf.Data) != len(pcm) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(pcm))
	}

	// Quantization to 16 bit loses at most one step.
	for i, want := range pcm {
		got := float32(buf.Data[i]) / 32767
		if diff := float64(got - want); math.Abs(diff) > 1.0/32767+1e-6 {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestEncodeWAV_ClampsOutOfRange(t *testing.T) {
	data, err := EncodeWAV([]float32{2.0, -2.0, 0}, 16000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if buf.Data[0] != 32767 || buf.Data[1] != -32767 || buf.Data[2] != 0 {
		t.Errorf("clamped samples wrong: %v", buf.Data)
	}
}

func TestEncodeWAV_RejectsBadInput(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("empty clip must be rejected")
	}
	if _, err := EncodeWAV([]float32{0.1}, 0); err == nil {
		t.Error("zero sample rate must be rejected")
	}
}

func TestWriteSeeker(t *testing.T) {
	var ws writeSeeker

	if _, err := ws.Write([]byte("abcdef")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Rewind and patch, the way the encoder fixes up chunk sizes.
	if _, err := ws.Seek(1, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if _, err := ws.Write([]byte("XY")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := string(ws.buf); got != "aXYdef" {
		t.Errorf("buffer %q, want %q", got, "aXYdef")
	}

	if pos, err := ws.Seek(-2, io.SeekEnd); err != nil || pos != 4 {
		t.Errorf("SeekEnd: pos %d err %v", pos, err)
	}
	if pos, err := ws.Seek(1, io.SeekCurrent); err != nil || pos != 5 {
		t.Errorf("SeekCurrent: pos %d err %v", pos, err)
	}
	if _, err := ws.Seek(-10, io.SeekStart); err == nil {
		t.Error("negative position must fail")
	}
}
