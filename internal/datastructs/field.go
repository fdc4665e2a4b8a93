package datastructs

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field keeps a webhook value in its raw JSON form so strings and numbers
// can be rendered the same way.
type Field []byte

func (f *Field) UnmarshalJSON(data []byte) error {
	*f = append((*f)[:0], data...)
	return nil
}

// Text renders the value for display. The second result is false for
// missing, null, false, zero and empty-string values.
func (f Field) Text() (string, bool) {
	v := bytes.TrimSpace(f)
	if len(v) == 0 {
		return "", false
	}
	switch v[0] {
	case 'n', 'f':
		return "", false
	case 't':
		return "true", true
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return string(v), true
		}
		if n == 0 {
			return "", false
		}
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
}

func (f Field) Present() bool {
	_, ok := f.Text()
	return ok
}
