package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
	}{
		{"en", English},
		{"ZH", ChineseSimplified},
		{" zh-TW ", ChineseTraditional},
		{"ja", Japanese},
		{"", English},
		{"klingon", English},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLanguage(tt.in))
		})
	}
}

func TestLanguage_DisplayName(t *testing.T) {
	assert.Equal(t, "English", English.DisplayName())
	assert.Equal(t, "Japanese", Japanese.DisplayName())
	assert.Equal(t, "xx", Language("xx").DisplayName())
	assert.False(t, Language("xx").IsValid())
}
