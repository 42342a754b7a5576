package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "valid glob", pattern: "Loaner - *", patternType: Glob, wantType: Glob},
		{name: "valid regex", pattern: "^[a-zA-Z0-9]{7,}$", patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "[unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "[unclosed", patternType: Glob, wantErr: true},
		{name: "auto detects regex", pattern: "^C02\\w+$", patternType: Auto, wantType: Regex},
		{name: "auto detects glob", pattern: "Loaner*", patternType: Auto, wantType: Glob},
		{name: "auto falls back to exact", pattern: "In Use", patternType: Auto, wantType: Exact},
		{name: "unsupported type", pattern: "x", patternType: PatternType(99), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		patternType PatternType
		pattern     string
		opts        *Options
		input       string
		want        bool
	}{
		{"serial valid", Regex, "^[a-zA-Z0-9]{7,}$", nil, "C02XK1ABJG5H", true},
		{"serial too short", Regex, "^[a-zA-Z0-9]{7,}$", nil, "ABC12", false},
		{"serial placeholder", Regex, "^[a-zA-Z0-9]{7,}$", nil, "To be filled by O.E.M.", false},
		{"anchored regex", Regex, "[0-9]+", &Options{Anchored: true}, "12a", false},
		{"loaner glob", Glob, "Loaner - *", nil, "Loaner - Checked Out", true},
		{"glob no match", Glob, "Loaner - *", nil, "Retired", false},
		{"glob case folded", Glob, "in use", &Options{CaseInsensitive: true}, "In Use", true},
		{"exact", Exact, "Apple Inc.", nil, "Apple Inc.", true},
		{"exact is case sensitive", Exact, "Apple Inc.", nil, "apple inc.", false},
		{"exact case folded", Exact, "Dell Inc.", &Options{CaseInsensitive: true}, "DELL INC.", true},
		{"contains", Contains, "Apple", nil, "Apple Inc.", true},
		{"contains case folded", Contains, "minint", &Options{CaseInsensitive: true}, "MININT-8H2K", true},
		{"contains empty pattern", Contains, "", nil, "anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustNew(tt.patternType, tt.pattern, tt.opts)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { MustNew(Regex, "(") })
}

func TestMultiMatcher(t *testing.T) {
	mm, err := NewMultiMatcher([]string{"imac", "macbook", "macmini"}, Contains, &Options{CaseInsensitive: true})
	require.NoError(t, err)

	assert.True(t, mm.Match("iMac19,1"))
	assert.True(t, mm.Match("Macmini8,1"))
	assert.False(t, mm.Match("Latitude 7490"))

	var nilMatcher *MultiMatcher
	assert.False(t, nilMatcher.Match("anything"))

	_, err = NewMultiMatcher([]string{"ok", "("}, Regex)
	assert.Error(t, err)
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "contains", Contains.String())
	assert.Equal(t, "unknown", PatternType(42).String())
}
