package charts

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

const (
	ihdrChunkLen   = 4 + 4 + 13 + 4 // length, type, data, crc
	inchesPerMetre = 1 / 0.0254
)

// withDPI inserts a pHYs chunk right after IHDR so viewers report the
// intended resolution. image/png never writes one.
func withDPI(data []byte, dpi float64) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG stream")
	}
	ihdrEnd := len(pngSignature) + ihdrChunkLen
	if len(data) < ihdrEnd || string(data[len(pngSignature)+4:len(pngSignature)+8]) != "IHDR" {
		return nil, errors.New("PNG stream does not start with IHDR")
	}
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid dpi %v", dpi)
	}

	ppm := uint32(math.Round(dpi * inchesPerMetre))

	chunk := binary.BigEndian.AppendUint32(nil, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1) // unit: metre
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, data[ihdrEnd:]...)
	return out, nil
}

// DPIOf reads the pHYs chunk back. It returns 0 when the stream has none.
func DPIOf(data []byte) (float64, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, errors.New("not a PNG stream")
	}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		kind := string(data[pos+4 : pos+8])
		end := pos + 8 + length + 4
		if length < 0 || end > len(data) {
			return 0, errors.New("truncated PNG chunk")
		}
		switch kind {
		case "pHYs":
			if length != 9 {
				return 0, fmt.Errorf("bad pHYs length %d", length)
			}
			body := data[pos+8 : pos+8+length]
			if body[8] != 1 {
				return 0, nil
			}
			ppm := binary.BigEndian.Uint32(body[0:4])
			return math.Round(float64(ppm) / inchesPerMetre), nil
		case "IDAT", "IEND":
			return 0, nil
		}
		pos = end
	}
	return 0, nil
}
