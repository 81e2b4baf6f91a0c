package transcript

import (
	"strings"
	"sync"
	"unicode"

	"github.com/jdkato/prose/tokenize"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

var (
	wordTokenizer = tokenize.NewTreebankWordTokenizer()

	// sentenceTokenizer loads the pretrained English Punkt parameters once
	sentenceTokenizer = sync.OnceValues(func() (*sentences.DefaultSentenceTokenizer, error) {
		return english.NewSentenceTokenizer(nil)
	})
)

// Words tokenizes text into Penn Treebank words and punctuation tokens.
// Contractions are split ("don't" becomes "do", "n't").
func Words(text string) []string {
	var words []string
	for _, sentence := range Sentences(text) {
		words = append(words, wordTokenizer.Tokenize(sentence)...)
	}
	return words
}

// Sentences splits text with the English Punkt model, so abbreviations such
// as "Dr." and decimals do not end a sentence. Empty fragments are dropped.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokenizer, err := sentenceTokenizer()
	if err != nil {
		return []string{strings.TrimSpace(text)}
	}

	var out []string
	for _, s := range tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// IsAlpha reports whether s is non-empty and made only of letters
func IsAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
