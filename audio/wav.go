// Package audio decodes WAV speech clips, derives per-video-frame mouth
// states from their amplitude, and mixes bumper audio tracks.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Clip is a decoded waveform, downmixed to mono and scaled to [-1, 1].
type Clip struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// LoadClip reads and decodes a WAV file.
func LoadClip(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio %s: %w", path, err)
	}
	defer f.Close()

	clip, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", path, err)
	}
	return clip, nil
}

// DecodeWAV parses a linear-PCM RIFF/WAVE stream. 8-bit samples are unsigned
// and re-centered around zero; 16/24/32-bit are signed little-endian. Any
// other width is decoded as 16-bit. Multi-channel audio is downmixed by
// per-sample channel average.
func DecodeWAV(r io.Reader) (*Clip, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		numChannels int
		sampleRate  int
		sampleWidth int
		data        []byte
	)

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			buf := make([]byte, size)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			if len(buf) < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", len(buf))
			}
			numChannels = int(binary.LittleEndian.Uint16(buf[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(buf[4:8]))
			sampleWidth = int(binary.LittleEndian.Uint16(buf[14:16])) / 8
		case "data":
			data = make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
		// Chunks are word-aligned.
		if size%2 == 1 {
			io.CopyN(io.Discard, r, 1)
		}
	}

	if sampleRate == 0 || numChannels == 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if data == nil {
		return nil, fmt.Errorf("missing data chunk")
	}

	samples := decodePCM(data, sampleWidth)

	// Downmix to mono.
	if numChannels > 1 {
		frames := len(samples) / numChannels
		mono := make([]float64, frames)
		for i := 0; i < frames; i++ {
			var sum float64
			for ch := 0; ch < numChannels; ch++ {
				sum += samples[i*numChannels+ch]
			}
			mono[i] = sum / float64(numChannels)
		}
		samples = mono
	}

	return &Clip{SampleRate: sampleRate, Samples: samples}, nil
}

func decodePCM(data []byte, width int) []float64 {
	switch width {
	case 1:
		out := make([]float64, len(data))
		for i, b := range data {
			out[i] = (float64(b) - 128) / 128
		}
		return out
	case 3:
		n := len(data) / 3
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF)
			}
			out[i] = float64(v) / 8388608
		}
		return out
	case 4:
		n := len(data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			out[i] = float64(v) / 2147483648
		}
		return out
	default:
		// 16-bit, also the fallback for unsupported widths.
		n := len(data) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			out[i] = float64(v) / 32768
		}
		return out
	}
}

// EncodeWAV writes c as 16-bit mono PCM.
func EncodeWAV(w io.Writer, c *Clip) error {
	dataLen := len(c.Samples) * 2

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], 1) // mono
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(c.SampleRate*2))
	binary.LittleEndian.PutUint16(hdr[32:34], 2)
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	buf := make([]byte, dataLen)
	for i, s := range c.Samples {
		v := math.Round(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v)))
	}
	_, err := w.Write(buf)
	return err
}

// WriteWAV encodes c to a file.
func WriteWAV(path string, c *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav %s: %w", path, err)
	}
	defer f.Close()
	return EncodeWAV(f, c)
}
