package index

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/russian"
)

// minTokenLength is the minimum token length (in runes) kept after splitting.
const minTokenLength = 2

// wordRegex matches Unicode word sequences (letters, digits, underscore).
var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lowercases text, splits it into Unicode words, drops short tokens
// and stop words, and stems the remainder. Cyrillic tokens go through the
// Russian Snowball stemmer, everything else through the English one, so a
// query in one inflected form matches sections using another.
//
// The same pipeline is used for indexing and for query processing; scoring
// only works if both sides agree on the token space.
func Tokenize(text string) []string {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTokenLength {
			continue
		}
		if IsStopWord(w) {
			continue
		}
		tokens = append(tokens, Stem(w))
	}
	return tokens
}

// Stem reduces a single lowercased token to its root form, routing by
// language: tokens containing Cyrillic codepoints use the Russian stemmer
// plus a derivational-suffix pass, all others the English one.
//
// The Snowball table data is immutable process-wide state; each call works on
// its own environment, so Stem is safe for concurrent use.
func Stem(token string) string {
	env := snowballstem.NewEnv(token)
	if hasCyrillic(token) {
		russian.Stem(env)
		return trimRussianDerivational(env.Current())
	}
	english.Stem(env)
	return env.Current()
}

// minRussianRoot is the minimum root length (in runes) a derivational strip
// may leave behind. Prevents collapsing short words like "мост" or "рост".
const minRussianRoot = 3

// russianVowels spell the Cyrillic vowel set; "ь" and "ъ" count as consonants.
const russianVowels = "аеёиоуыэюя"

// trimRussianDerivational strips noun-forming suffixes the Snowball Russian
// algorithm leaves in place when its region conditions fail. Without it, verb
// and noun forms of one root index as different terms: "установка" stems to
// "установк" while "установить" stems to "установ", and "стоимость" stems to
// "стоимост" while "стоит" stems to "сто" — so a query in one form never
// matches a section using the other.
//
// Handled suffixes, longest match first: -имость ("имост" after Snowball
// drops the soft sign), -ость ("ост"), and -ка ("к" left on a consonant-final
// stem). A trailing "й" is dropped last so "настройка" and "настроить" agree.
func trimRussianDerivational(stem string) string {
	runes := []rune(stem)

	switch {
	case hasRuneSuffix(runes, "имост") && len(runes)-5 >= minRussianRoot:
		runes = runes[:len(runes)-5]
	case hasRuneSuffix(runes, "ост") && len(runes)-3 >= minRussianRoot:
		runes = runes[:len(runes)-3]
	case len(runes)-1 >= minRussianRoot && runes[len(runes)-1] == 'к' &&
		!isRussianVowel(runes[len(runes)-2]):
		runes = runes[:len(runes)-1]
	}

	if len(runes)-1 >= minRussianRoot && runes[len(runes)-1] == 'й' {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

func hasRuneSuffix(runes []rune, suffix string) bool {
	s := []rune(suffix)
	if len(runes) < len(s) {
		return false
	}
	tail := runes[len(runes)-len(s):]
	for i := range s {
		if tail[i] != s[i] {
			return false
		}
	}
	return true
}

func isRussianVowel(r rune) bool {
	return strings.ContainsRune(russianVowels, r)
}

// hasCyrillic reports whether the token contains a codepoint in U+0400-U+04FF.
func hasCyrillic(s string) bool {
	for _, r := range s {
		if r >= 0x0400 && r <= 0x04FF {
			return true
		}
	}
	return false
}

// TermFrequencies tokenizes text and counts occurrences of each stemmed term.
func TermFrequencies(text string) map[string]int {
	terms := make(map[string]int)
	for _, tok := range Tokenize(text) {
		terms[tok]++
	}
	return terms
}
