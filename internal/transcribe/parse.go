package transcribe

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaibh/v2srt/internal/timecode"
)

// Segment is one timestamped unit of recognized speech, normalized from
// whichever transcript shape the recognizer produced.
type Segment struct {
	Start timecode.TimeCode
	End   timecode.TimeCode
	Text  string
}

// rawSegment tolerates both transcript shapes: whisper.cpp's nested
// {"timestamps":{"from","to"}} records and the flat {"start","end"} records
// with float seconds.
type rawSegment struct {
	Timestamps *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"timestamps"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// rawTranscript matches the two observed top-level documents:
// {"transcription":[...]} from whisper.cpp and {"segments":[...]} from the
// Python port.
type rawTranscript struct {
	Transcription []rawSegment `json:"transcription"`
	Segments      []rawSegment `json:"segments"`
}

// ParseTranscript decodes a transcript JSON document into normalized
// segments. A bare top-level array of flat segments is accepted too.
func ParseTranscript(data []byte) ([]Segment, error) {
	var doc rawTranscript
	if err := json.Unmarshal(data, &doc); err != nil {
		// Some recognizers emit the segment list with no wrapper object.
		var list []rawSegment
		if listErr := json.Unmarshal(data, &list); listErr != nil {
			return nil, fmt.Errorf("unrecognized transcript document: %v", err)
		}
		doc.Segments = list
	}

	raw := doc.Transcription
	if len(raw) == 0 {
		raw = doc.Segments
	}

	segments := make([]Segment, 0, len(raw))
	for i, r := range raw {
		seg, err := r.normalize()
		if err != nil {
			return nil, fmt.Errorf("segment %d: %v", i, err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func (r rawSegment) normalize() (Segment, error) {
	text := strings.TrimSpace(r.Text)

	if r.Timestamps != nil {
		start, err := timecode.Parse(r.Timestamps.From)
		if err != nil {
			return Segment{}, err
		}
		end, err := timecode.Parse(r.Timestamps.To)
		if err != nil {
			return Segment{}, err
		}
		return Segment{Start: start, End: end, Text: text}, nil
	}

	return Segment{
		Start: timecode.FromSeconds(r.Start),
		End:   timecode.FromSeconds(r.End),
		Text:  text,
	}, nil
}
