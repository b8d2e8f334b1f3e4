package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hola", NormalizeText("  HOLA  "))
	assert.Equal(t, "menú", NormalizeText("MENÚ"))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestParseAge(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"tengo 25 años", 25},
		{"25", 25},
		{"soy mayor", 0},
		{"tengo 0 años", 0},
		{"121", 0},
		{"120", 120},
		{"nací en 1990", 199}, // first 1-3 digit run, out of range digits beyond
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseAge(tc.text), "text=%q", tc.text)
	}
}

func TestResetTokens(t *testing.T) {
	for _, token := range []string{"reset", "menu", "menú", "inicio", "reiniciar", "cambiar"} {
		assert.True(t, isResetToken(token), token)
	}
	assert.False(t, isResetToken("resetear por favor"))
}

func TestKeywordMatchers(t *testing.T) {
	assert.True(t, matchesLaboral("1"))
	assert.True(t, matchesLaboral("me despidieron del trabajo"))
	assert.False(t, matchesLaboral("3"))

	assert.True(t, matchesSupport("2"))
	assert.True(t, matchesSupport("la app tiene un error"))
	assert.False(t, matchesSupport("hola"))
}
