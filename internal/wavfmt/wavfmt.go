// Package wavfmt builds WAV envelopes (spec §4.6: 44-byte RIFF header,
// mono 16-bit PCM, chunk sizes filled in or 0x7fffffff for streaming
// unknown length). Adapted from the teacher's internal/audio/wav.go,
// generalized from a single buffered-samples helper to also support the
// unknown-length streaming case.
package wavfmt

import "encoding/binary"

// unknownChunkSize is written into RIFF/data chunk sizes when the
// total length is not yet known (streaming synthesis).
const unknownChunkSize = 0x7fffffff

// Header returns a 44-byte RIFF/WAVE header. If dataLen < 0, the chunk
// sizes are written as 0x7fffffff (streaming, unknown length).
func Header(sampleRate, dataLen int) []byte {
	buf := make([]byte, 44)
	copy(buf[0:4], "RIFF")
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16)                   // bits per sample
	copy(buf[36:40], "data")

	if dataLen < 0 {
		binary.LittleEndian.PutUint32(buf[4:8], unknownChunkSize)
		binary.LittleEndian.PutUint32(buf[40:44], unknownChunkSize)
	} else {
		binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
		binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	}
	return buf
}

// EncodePCM16 wraps raw little-endian 16-bit PCM samples in a complete,
// correctly-sized WAV byte slice.
func EncodePCM16(samples []int16, sampleRate int) []byte {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	out := make([]byte, 0, 44+len(data))
	out = append(out, Header(sampleRate, len(data))...)
	out = append(out, data...)
	return out
}

// EmptyWAV returns a header-only, zero-data WAV — the failure-mode body
// spec §4.6 requires when the synthesizer process fails.
func EmptyWAV(sampleRate int) []byte {
	return Header(sampleRate, 0)
}
