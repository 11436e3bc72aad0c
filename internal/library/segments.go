package library

import "encoding/json"

// Catalog versions disagree on the segment JSON shape: bare message-ID
// strings, objects with varying key casing, or lists wrapped in a named
// field. Key order below is the probe order.
var (
	segmentIDKeys   = []string{"MessageId", "MessageID", "MsgId", "MsgID", "message_id", "messageId", "Id"}
	segmentSizeKeys = []string{"Bytes", "Size", "ByteCount", "Length"}
	segmentWrappers = []string{"SegmentIds", "Segments", "segments"}
)

// DecodeSegments extracts segment references from a raw JSON column value.
// Unrecognized or malformed input yields an empty slice, never an error.
func DecodeSegments(raw []byte) []Segment {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return segmentsFromValue(value)
}

func segmentsFromValue(value any) []Segment {
	if obj, ok := value.(map[string]any); ok {
		for _, key := range segmentWrappers {
			if inner, ok := obj[key]; ok {
				value = inner
				break
			}
		}
	}

	list, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]Segment, 0, len(list))
	for _, entry := range list {
		switch typed := entry.(type) {
		case string:
			out = append(out, Segment{MessageID: typed})
		case map[string]any:
			seg := Segment{}
			for _, key := range segmentIDKeys {
				if id, ok := typed[key].(string); ok {
					seg.MessageID = id
					break
				}
			}
			for _, key := range segmentSizeKeys {
				if raw, ok := typed[key]; ok {
					if size, ok := asInt64(raw); ok {
						seg.Bytes = size
						break
					}
				}
			}
			if seg.MessageID != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}

// DecodeRarParts extracts per-part segment lists from an archive's parts
// JSON column. Each part may itself be a list, a wrapped object, or a bare
// message-ID string.
func DecodeRarParts(raw []byte) [][]Segment {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	parts := make([][]Segment, 0, len(list))
	for _, part := range list {
		parts = append(parts, segmentsFromValue(part))
	}
	return parts
}

func asInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case float64:
		return int64(typed), true
	case string:
		var parsed json.Number = json.Number(typed)
		if n, err := parsed.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}
