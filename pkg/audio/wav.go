package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// wavFormat is the playback format of a decoded WAV file.
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// parseWAV walks the RIFF chunks of a WAV file and returns its format and
// raw PCM samples. Chunks other than "fmt " and "data" are skipped.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("reading RIFF header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, fmt.Errorf("not a WAV file")
	}

	var format *wavFormat
	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(r, chunkID); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, nil, fmt.Errorf("reading chunk id: %w", err)
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, fmt.Errorf("reading chunk size: %w", err)
		}

		switch string(chunkID) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return nil, nil, fmt.Errorf("reading format chunk: %w", err)
			}
			format = &wavFormat{
				SampleRate: int(fmtChunk.SampleRate),
				Channels:   int(fmtChunk.NumChannels),
				BitDepth:   int(fmtChunk.BitsPerSample),
			}
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := r.Seek(extra, io.SeekCurrent); err != nil {
					return nil, nil, fmt.Errorf("skipping format extension: %w", err)
				}
			}
		case "data":
			if format == nil {
				return nil, nil, fmt.Errorf("data chunk before format chunk")
			}
			samples := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, samples); err != nil {
				return nil, nil, fmt.Errorf("reading samples: %w", err)
			}
			return format, samples, nil
		default:
			if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, nil, fmt.Errorf("skipping chunk %q: %w", chunkID, err)
			}
		}
	}
	return nil, nil, fmt.Errorf("no data chunk found")
}
