package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) Raw {
	t.Helper()
	raw, err := Decode([]byte(body))
	require.NoError(t, err)
	return raw
}

func TestDecode_rejectsNonObjects(t *testing.T) {
	for _, body := range []string{``, `null`, `[1,2]`, `"text"`, `{`} {
		_, err := Decode([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestNormalize_scenarioA(t *testing.T) {
	raw := decode(t, `{"labels":["10-01 10:00","10-01 11:00"],"values":[1008.2,1006.9],"risk":"警戒"}`)

	m, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"10-01 10:00", "10-01 11:00"}, m.Series.Labels)
	assert.Equal(t, Points(1008.2, 1006.9), m.Series.Values)
	assert.Equal(t, "警戒", m.RiskLabel)
	assert.Nil(t, m.Current.Hpa)
	assert.Nil(t, m.Window)
	assert.Nil(t, m.NowIndex)
	assert.False(t, m.NightMode)
}

func TestNormalize_displayLabelsWin(t *testing.T) {
	raw := decode(t, `{
		"labels":["2024-10-01 09:00","2024-10-01 10:00","2024-10-01 11:00"],
		"display_labels":["9時","10時","11時"],
		"values":[1010,1009,1008]
	}`)

	m, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"9時", "10時", "11時"}, m.Series.Labels)
}

func TestNormalize_labelFallbacks(t *testing.T) {
	t.Run("display_labels not an array falls back to labels", func(t *testing.T) {
		m, err := Normalize(decode(t, `{"display_labels":"nope","labels":["a","b"],"values":[1,2]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, m.Series.Labels)
	})

	t.Run("no label source is insufficient", func(t *testing.T) {
		_, err := Normalize(decode(t, `{"values":[1,2,3]}`))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("non-string labels are stringified", func(t *testing.T) {
		m, err := Normalize(decode(t, `{"labels":[9,null],"values":[1,2]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"9", ""}, m.Series.Labels)
	})
}

func TestNormalize_insufficientData(t *testing.T) {
	tests := map[string]string{
		"values missing (scenario D)": `{"labels":["a","b"]}`,
		"values not array":            `{"labels":["a","b"],"values":"1,2"}`,
		"single value":                `{"labels":["a","b"],"values":[1]}`,
		"single label":                `{"labels":["a"],"values":[1,2]}`,
		"single gap":                  `{"labels":["a","b"],"values":[null]}`,
		"empty object":                `{}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(decode(t, body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInsufficientData))
		})
	}
}

func TestNormalize_nonNumericValuesAreGaps(t *testing.T) {
	m, err := Normalize(decode(t, `{"labels":["a","b","c","d"],"values":[1008.2,null,"x",1006.9],"risk":"警戒"}`))
	require.NoError(t, err)
	require.Equal(t, 4, m.Series.Len())
	assert.Equal(t, 1008.2, *m.Series.Values[0])
	assert.Nil(t, m.Series.Values[1])
	assert.Nil(t, m.Series.Values[2])
	assert.Equal(t, 1006.9, *m.Series.Values[3])
	assert.Equal(t, 2, m.Series.Gaps())
	assert.Equal(t, "警戒", m.RiskLabel)

	b, err := json.Marshal(m.Series)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["a","b","c","d"],"values":[1008.2,null,null,1006.9]}`, string(b))
}

func TestNormalize_gapsCountTowardMinimum(t *testing.T) {
	m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[null,"n/a"]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Series.Len())
	assert.Equal(t, 2, m.Series.Gaps())
}

func TestNormalize_riskLabelScalars(t *testing.T) {
	tests := []struct {
		json string
		want string
	}{
		{`"注意"`, "注意"},
		{`3`, "3"},
		{`1.5`, "1.5"},
		{`true`, "true"},
		{`null`, ""},
		{`{"level":"警戒"}`, ""},
		{`["警戒"]`, ""},
	}
	for _, tt := range tests {
		m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[1,2],"risk":`+tt.json+`}`))
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.RiskLabel, "risk %s", tt.json)
	}
}

func TestNormalize_mismatchedLengthsAreAligned(t *testing.T) {
	m, err := Normalize(decode(t, `{"labels":["a","b","c"],"values":[1,2]}`))
	require.NoError(t, err)
	assert.Len(t, m.Series.Labels, 2)
	assert.Equal(t, m.Series.Len(), len(m.Series.Labels))
}

func TestNormalize_numericFieldsArePermissive(t *testing.T) {
	tests := []struct {
		name string
		json string
		want *float64
	}{
		{"number", `1008.4`, ptr(1008.4)},
		{"numeric string", `" 1008.4 "`, ptr(1008.4)},
		{"zero is known", `0`, ptr(0)},
		{"garbage string", `"n/a"`, nil},
		{"bool", `true`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"labels":["a","b"],"values":[1,2],"current_hpa":` + tt.json + `,"danger_window":{"start":"s","end":"e","delta_hpa":` + tt.json + `}}`
			m, err := Normalize(decode(t, body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Current.Hpa)
			require.NotNil(t, m.Window)
			assert.Equal(t, tt.want, m.Window.DeltaHpa)
		})
	}
}

func TestNormalize_dangerWindow(t *testing.T) {
	t.Run("scenario B labels and delta", func(t *testing.T) {
		m, err := Normalize(decode(t, `{
			"labels":["a","b","c","d","e"],"values":[1,2,3,4,5],
			"danger_window":{"start":"2024-10-01T09:00:00","end":"2024-10-01T13:00:00","delta_hpa":-5.2,"start_i":1,"end_i":3}
		}`))
		require.NoError(t, err)
		require.NotNil(t, m.Window)
		assert.Equal(t, "2024-10-01T09:00:00", m.Window.StartLabel)
		assert.Equal(t, -5.2, *m.Window.DeltaHpa)
		assert.True(t, m.Window.HasIndexes())
		assert.Equal(t, 1, *m.Window.StartIndex)
		assert.Equal(t, 3, *m.Window.EndIndex)
	})

	t.Run("out of range indexes are unknown", func(t *testing.T) {
		m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[1,2],"danger_window":{"start":"x","end":"y","start_i":-1,"end_i":7}}`))
		require.NoError(t, err)
		require.NotNil(t, m.Window)
		assert.False(t, m.Window.HasIndexes())
		assert.True(t, m.Window.HasLabels())
	})

	t.Run("reversed indexes are swapped", func(t *testing.T) {
		m, err := Normalize(decode(t, `{"labels":["a","b","c"],"values":[1,2,3],"danger_window":{"start_i":2,"end_i":0}}`))
		require.NoError(t, err)
		require.NotNil(t, m.Window)
		assert.Equal(t, 0, *m.Window.StartIndex)
		assert.Equal(t, 2, *m.Window.EndIndex)
	})

	t.Run("null and empty windows are absent", func(t *testing.T) {
		for _, w := range []string{`null`, `{}`, `"soon"`} {
			m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[1,2],"danger_window":`+w+`}`))
			require.NoError(t, err)
			assert.Nil(t, m.Window, "window %s", w)
		}
	})
}

func TestNormalize_nowIndex(t *testing.T) {
	m, err := Normalize(decode(t, `{"labels":["a","b","c"],"values":[1,2,3],"i_now":2}`))
	require.NoError(t, err)
	require.NotNil(t, m.NowIndex)
	assert.Equal(t, 2, *m.NowIndex)

	for _, v := range []string{`3`, `1.5`, `"x"`, `-1`} {
		m, err := Normalize(decode(t, `{"labels":["a","b","c"],"values":[1,2,3],"i_now":`+v+`}`))
		require.NoError(t, err)
		assert.Nil(t, m.NowIndex, "i_now %s", v)
	}
}

func TestNormalize_nightMode(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`"is_night_mode":true`, true},
		{`"is_night_mode":false,"isNightMode":true`, false},
		{`"isNightMode":true`, true},
		{`"is_night_mode":"true"`, false},
		{`"other":1`, false},
	}
	for _, tt := range tests {
		m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[1,2],`+tt.body+`}`))
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.NightMode, tt.body)
	}
}

func TestNormalize_currentTimeTruncated(t *testing.T) {
	m, err := Normalize(decode(t, `{"labels":["a","b"],"values":[1,2],"current_hpa":1007.3,"current_time":"2024-10-01 14:00","delta_3h":-1.2}`))
	require.NoError(t, err)
	assert.Equal(t, "10-01 14:00", m.Current.ObservedAt)
	assert.Equal(t, 1007.3, *m.Current.Hpa)
	assert.Equal(t, -1.2, *m.Delta3h)
}

func TestNormalize_acceptsPlainFloatRaw(t *testing.T) {
	raw := Raw{
		"labels": []any{"a", "b"},
		"values": []any{1008.0, json.Number("1007.5")},
	}
	m, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, Points(1008.0, 1007.5), m.Series.Values)
}

func TestTruncateDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-10-01T09:00:00", "10-01 09:00"},
		{"2024-10-01 13:00", "10-01 13:00"},
		{"10-01 10:00", "10-01 10:00"},
		{"", ""},
		{"2024-10-01T09:0", "2024-10-01T09:0"},
		{"2024-10-01 09:00 JST", "10-01 09:00"},
		{"2024-OcT-01 09:00", "OcT-01 09:0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateDate(tt.in), "TruncateDate(%q)", tt.in)
	}
}

func TestTruncateDate_shortStringsUnchanged(t *testing.T) {
	for _, s := range []string{"a", "10-01 10:00", "0123456789abcde", "気圧データなし"} {
		require.Less(t, len([]rune(s)), 16)
		assert.Equal(t, s, TruncateDate(s))
		assert.Equal(t, TruncateDate(s), TruncateDate(TruncateDate(s)))
	}
}

func ptr(f float64) *float64 { return &f }
