package tally

import (
	"encoding/base64"
	"strings"
	"unicode"
)

const (
	// DataMarker prefixes event payloads emitted by programs.
	DataMarker = "Program data:"
	// LoggedMarker is accepted when no DataMarker is present on a line.
	LoggedMarker = "Program logged:"
)

// Blob is a binary payload recovered from one log line.
type Blob struct {
	Line   int
	Marker string
	Data   []byte
}

// ExtractBlobs returns the decodable payloads of lines in order. Lines
// without a marker or with undecodable payloads are skipped.
func ExtractBlobs(lines []string) []Blob {
	var blobs []Blob
	for i, line := range lines {
		marker := DataMarker
		idx := strings.Index(line, DataMarker)
		if idx < 0 {
			marker = LoggedMarker
			idx = strings.Index(line, LoggedMarker)
		}
		if idx < 0 {
			continue
		}

		payload := stripSpace(line[idx+len(marker):])
		if payload == "" {
			continue
		}
		data, err := decodeBase64(payload)
		if err != nil {
			continue
		}
		blobs = append(blobs, Blob{Line: i, Marker: marker, Data: data})
	}
	return blobs
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
