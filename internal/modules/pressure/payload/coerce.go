package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// number parses a JSON number or numeric string. Everything else, including
// NaN and infinities, is unknown.
func number(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return nil
		}
		f = p
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// index parses a non-negative integer position below n.
func index(v any, n int) *int {
	f := number(v)
	if f == nil || *f != math.Trunc(*f) || *f < 0 || *f >= float64(n) {
		return nil
	}
	i := int(*f)
	return &i
}

// numberList returns ok=false when v is not an array. Entries that are not
// numbers come back nil.
func numberList(v any) ([]*float64, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]*float64, len(arr))
	for i, e := range arr {
		out[i] = number(e)
	}
	return out, true
}

func stringList(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case string:
			out = append(out, t)
		case nil:
			out = append(out, "")
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// labelField is stringField for display text: other scalars are shown as
// they print, null is empty.
func labelField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

const (
	truncateMinLen = 16
	truncateOffset = 5
	truncateWidth  = 11
	// position of the ISO date/time separator inside the window
	separatorAt = 5
)

// TruncateDate shortens "2024-10-01T09:00:00" style stamps to "10-01 09:00".
// Strings under 16 runes come back unchanged. Only the date/time separator
// is rewritten; any other T is kept.
func TruncateDate(s string) string {
	r := []rune(s)
	if len(r) < truncateMinLen {
		return s
	}
	w := r[truncateOffset : truncateOffset+truncateWidth]
	if w[separatorAt] == 'T' {
		w[separatorAt] = ' '
	}
	return string(w)
}
