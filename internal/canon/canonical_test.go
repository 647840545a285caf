package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", `"hello"`},
		{"no html escaping", "<a & b>", `"<a & b>"`},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"control characters", "a\nb\x01", `"a\nb\u0001"`},
		{"quote and backslash", `"\`, `"\"\\"`},
		{"nfc", "e\u0301", "\"\u00e9\""},
		{"int", 42, `42`},
		{"negative int64", int64(-7), `-7`},
		{"bool", true, `true`},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
		{"nested", map[string]any{"b": []any{1, "x"}, "a": map[string]string{"z": "1", "y": "2"}},
			`{"a":{"y":"2","z":"1"},"b":[1,"x"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for _, v := range []any{nil, 1.5, float32(2), map[string]any{"a": nil}, []any{struct{}{}}} {
		_, err := MarshalCanonical(v)
		assert.Error(t, err, "%#v", v)
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 byte order but after it in
	// UTF-16 code units (0xD83D < 0xFF61).
	keys := SortedKeys(map[string]any{"\U0001F600": 1, "\uFF61": 2, "a": 3})
	assert.Equal(t, []string{"a", "\U0001F600", "\uFF61"}, keys)
}

func TestFingerprint(t *testing.T) {
	args := map[string]any{"threshold": "10", "argv": []string{"x"}}

	a, err := Fingerprint([]byte("steps: []\n"), args)
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := Fingerprint([]byte("steps: []\n"), map[string]any{"argv": []string{"x"}, "threshold": "10"})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Fingerprint([]byte("steps: []\n"), map[string]any{"threshold": "11", "argv": []string{"x"}})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := Fingerprint([]byte("main: []\n"), args)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)

	assert.NotEqual(t, HashWithDomain("x", []byte("y")), HashWithDomain("xy", nil))
}
