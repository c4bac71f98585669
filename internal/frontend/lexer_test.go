package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func tokenTexts(t *testing.T, src string) []string {
	t.Helper()
	toks, err := (DefaultLexer{}).Tokenize(src, "test.rill")
	require.NoError(t, err)
	texts := make([]string, len(toks))
	for i, tok := range toks {
		texts[i] = tok.Text
	}
	return texts
}

func TestNormalizeSourceStripsBOM(t *testing.T) {
	got := normalizeSource("﻿let x: i64 = 1")
	assert.Equal(t, "let x: i64 = 1", got)
}

func TestNormalizeSourceAppliesNFC(t *testing.T) {
	nfd := "café" // "cafe" + combining acute accent (NFD)
	nfc := "café" // "caf" + precomposed e-acute (NFC)
	got := normalizeSource(nfd)
	assert.True(t, norm.NFC.IsNormalString(got))
	assert.Equal(t, nfc, got)
}

func TestTokenizeNFCAndNFDIdentifiersMatch(t *testing.T) {
	nfc := tokenTexts(t, "let café: i64 = 1")
	nfd := tokenTexts(t, "let café: i64 = 1")
	assert.Equal(t, nfc, nfd)
}

func TestTokenizeStripsLeadingBOM(t *testing.T) {
	toks, err := (DefaultLexer{}).Tokenize("﻿let x: i64 = 1", "test.rill")
	require.NoError(t, err)
	require.NotEmpty(t, toks)
	assert.Equal(t, "let", toks[0].Text)
	assert.Equal(t, 1, toks[0].Pos.Col)
}
