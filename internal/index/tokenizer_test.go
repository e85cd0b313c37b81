package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndStems(t *testing.T) {
	// Given: English text with mixed case and inflections
	text := "Installing the Agent requires Installed packages"

	// When: I tokenize it
	tokens := Tokenize(text)

	// Then: inflected forms collapse to one stem and stop words are gone
	assert.Contains(t, tokens, Stem("installing"))
	assert.Equal(t, Stem("installing"), Stem("installed"),
		"inflections of the same word should share a stem")
	assert.NotContains(t, tokens, "the")
}

func TestTokenize_RussianInflectionsShareStem(t *testing.T) {
	// Given: the same Russian noun in two case forms
	stem1 := Stem("тарифы")
	stem2 := Stem("тариф")

	// Then: both reduce to the same root
	assert.Equal(t, stem1, stem2, "plural and singular should share a stem")
}

func TestStem_RussianVerbAndNounShareRoot(t *testing.T) {
	// Snowball alone keeps these apart ("установк" vs "установ",
	// "стоимост" vs "сто"); the derivational pass closes the gap.
	assert.Equal(t, Stem("установить"), Stem("установка"),
		"verb and -ка noun of the same root should share a stem")
	assert.Equal(t, Stem("стоит"), Stem("стоимость"),
		"verb and -имость noun of the same root should share a stem")
	assert.Equal(t, Stem("настроить"), Stem("настройка"),
		"verb and noun with a stem-final й should share a stem")
}

func TestStem_DerivationalPassKeepsShortRoots(t *testing.T) {
	// Words that merely end in a suffix-shaped tail must not be gutted.
	assert.Equal(t, "мост", Stem("мост"))
	assert.Equal(t, "рост", Stem("рост"))
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	// Given: one-rune tokens around a real word
	tokens := Tokenize("x установка y")

	// Then: only the real word survives
	assert.Len(t, tokens, 1)
	assert.Equal(t, Stem("установка"), tokens[0])
}

func TestTokenize_DropsStopWordsBothLanguages(t *testing.T) {
	// Given: text that is entirely stop words
	tokens := Tokenize("и в на the and for это")

	// Then: nothing survives
	assert.Empty(t, tokens)
}

func TestTokenize_KeepsUnderscoreIdentifiers(t *testing.T) {
	// Given: a snake_case identifier
	tokens := Tokenize("set api_key value")

	// Then: the identifier is kept as a single token
	assert.Contains(t, tokens, Stem("api_key"))
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \n\t  "))
}

func TestStem_RoutesByScript(t *testing.T) {
	// Cyrillic goes through the Russian stemmer, Latin through English.
	// The routing matters: the English stemmer would leave Russian
	// inflections untouched.
	assert.NotEqual(t, "тарифы", Stem("тарифы"), "Russian plural should be reduced")
	assert.Equal(t, "run", Stem("running"))
}

func TestTermFrequencies_CountsStemmedTerms(t *testing.T) {
	// Given: text repeating one word in two forms
	freqs := TermFrequencies("deploy deploys deployment extra")

	// Then: the shared stem accumulates the repeated forms
	assert.GreaterOrEqual(t, freqs[Stem("deploy")], 2)
	assert.Equal(t, 1, freqs[Stem("extra")])
}
