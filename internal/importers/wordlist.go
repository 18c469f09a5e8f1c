package importers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mrlokans/wordstudy/internal/entities"
)

// WordListEntry is one word in an import file. Parts may be omitted and are
// then suggested from the written form.
type WordListEntry struct {
	WrittenForm  string              `json:"written_form"`
	Romanization string              `json:"romanization"`
	Gloss        string              `json:"gloss"`
	Parts        []entities.WordPart `json:"parts,omitempty"`
}

// WordList is the parsed import file. When Group is set every imported word
// is added to that group, which is created if needed.
type WordList struct {
	Group string          `json:"group,omitempty"`
	Words []WordListEntry `json:"words"`
}

// ParseWordList reads either a bare JSON array of entries or an object
// {"group": "...", "words": [...]}.
func ParseWordList(r io.Reader) (*WordList, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}

	var list WordList
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &list.Words); err != nil {
			return nil, fmt.Errorf("failed to parse word list: %w", err)
		}
		return &list, nil
	}

	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}
	return &list, nil
}
