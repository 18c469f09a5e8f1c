// Package reading suggests word parts and kana readings for Japanese words
// using the kagome morphological analyzer with the IPA dictionary.
package reading

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/mrlokans/wordstudy/internal/entities"
)

// IPA feature index of the katakana reading.
const readingFeature = 7

// Suggester is safe for concurrent use.
type Suggester struct {
	t *tokenizer.Tokenizer
}

func NewSuggester() (*Suggester, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}
	return &Suggester{t: t}, nil
}

// SuggestParts splits writtenForm into morphemes and returns one part per
// morpheme with its hiragana reading. Kana-only morphemes the dictionary does
// not know are read as written.
func (s *Suggester) SuggestParts(writtenForm string) ([]entities.WordPart, error) {
	writtenForm = strings.TrimSpace(writtenForm)
	if writtenForm == "" {
		return nil, fmt.Errorf("empty written form")
	}

	var parts []entities.WordPart
	for _, token := range s.t.Tokenize(writtenForm) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}

		reading := ""
		if features := token.Features(); len(features) > readingFeature && features[readingFeature] != "*" {
			reading = KatakanaToHiragana(features[readingFeature])
		} else if IsKana(token.Surface) {
			reading = KatakanaToHiragana(token.Surface)
		}
		if reading == "" {
			return nil, fmt.Errorf("no reading known for %q in %q", token.Surface, writtenForm)
		}

		parts = append(parts, entities.WordPart{
			WrittenForm: token.Surface,
			Readings:    []string{reading},
		})
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("no morphemes found in %q", writtenForm)
	}
	return parts, nil
}

// KatakanaToHiragana maps katakana letters to hiragana, leaving the prolonged
// sound mark and every other rune unchanged.
func KatakanaToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - ('ァ' - 'ぁ')
		}
		return r
	}, s)
}

// IsKana reports whether s consists only of hiragana, katakana and the
// prolonged sound mark.
func IsKana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.In(r, unicode.Hiragana, unicode.Katakana) && r != 'ー' {
			return false
		}
	}
	return true
}
