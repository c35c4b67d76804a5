// Package audio decodes uploaded voice notes into samples for speech recognition.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// SampleRate is the input rate speech models expect.
const SampleRate = 16000

var (
	// ErrUnsupportedAudio is returned for anything other than 16-bit PCM WAV.
	ErrUnsupportedAudio = errors.New("unsupported audio: expected 16-bit PCM WAV")
	// ErrEmptyAudio is returned when the stream holds no samples.
	ErrEmptyAudio = errors.New("audio contains no samples")
)

const maxWAVBytes = 64 << 20

type wavFormat struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
}

// DecodeWAV reads a RIFF/WAVE stream of 16-bit PCM and returns mono samples
// in [-1, 1] resampled to SampleRate.
func DecodeWAV(r io.Reader) ([]float32, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxWAVBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(raw) > maxWAVBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxWAVBytes)
	}
	if len(raw) < 12 || !bytes.Equal(raw[0:4], []byte("RIFF")) || !bytes.Equal(raw[8:12], []byte("WAVE")) {
		return nil, ErrUnsupportedAudio
	}

	var (
		format  *wavFormat
		payload []byte
	)
	pos := 12
	for pos+8 <= len(raw) {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(raw) {
			size = len(raw) - body
		}
		chunk := raw[body : body+size]

		switch id {
		case "fmt ":
			if len(chunk) < 16 {
				return nil, ErrUnsupportedAudio
			}
			format = &wavFormat{
				audioFormat:   binary.LittleEndian.Uint16(chunk[0:2]),
				channels:      binary.LittleEndian.Uint16(chunk[2:4]),
				sampleRate:    binary.LittleEndian.Uint32(chunk[4:8]),
				bitsPerSample: binary.LittleEndian.Uint16(chunk[14:16]),
			}
		case "data":
			payload = chunk
		}

		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if format == nil || format.audioFormat != 1 || format.bitsPerSample != 16 || format.channels == 0 || format.sampleRate == 0 {
		return nil, ErrUnsupportedAudio
	}

	channels := int(format.channels)
	frames := len(payload) / (2 * channels)
	if frames == 0 {
		return nil, ErrEmptyAudio
	}

	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * 2
			sum += float32(int16(binary.LittleEndian.Uint16(payload[off:off+2]))) / 32768
		}
		mono[i] = sum / float32(channels)
	}

	out := resample(mono, int(format.sampleRate), SampleRate)
	if len(out) == 0 {
		return nil, ErrEmptyAudio
	}
	return out, nil
}

// resample converts between rates with linear interpolation.
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		src := float64(i) * ratio
		j := int(src)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(src - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}
