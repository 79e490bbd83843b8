package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"quizvoice/internal/domain"
)

var errNotWAV = errors.New("not a RIFF/WAVE file")

// EncodeWAV wraps mono 16-bit PCM samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// DecodeWAV reads interleaved 16-bit PCM samples out of a WAV file. A data
// chunk whose declared size runs past the end of the file is read to the end,
// which is what streamed WAV responses look like.
func DecodeWAV(data []byte) ([]int16, domain.AudioFormat, error) {
	var format domain.AudioFormat

	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, format, errNotWAV
	}

	haveFormat := false
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		end := body + size

		if end > len(data) {
			if id != "data" {
				return nil, format, fmt.Errorf("truncated %q chunk", id)
			}
			end = len(data)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, format, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			if tag := binary.LittleEndian.Uint16(data[body:]); tag != 1 {
				return nil, format, fmt.Errorf("unsupported WAV encoding %d: only PCM is supported", tag)
			}
			format.Channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			format.SampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			format.BitDepth = int(binary.LittleEndian.Uint16(data[body+14:]))
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, format, errors.New("data chunk before fmt chunk")
			}
			if format.BitDepth != 16 {
				return nil, format, fmt.Errorf("unsupported bit depth %d: only 16-bit is supported", format.BitDepth)
			}
			samples := make([]int16, (end-body)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(data[body+2*i:]))
			}
			return samples, format, nil
		}

		if size%2 == 1 {
			end++
		}
		pos = end
	}

	return nil, format, errors.New("no data chunk")
}
