package models

import (
	"strings"

	json "github.com/goccy/go-json"
)

// OldTestamentBooks is the fixed canonical split: the first 39 books of a
// translation's catalog are Old Testament, the remainder New Testament.
const OldTestamentBooks = 39

const ContentTypeVerse = "verse"

type Book struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	NumberOfChapters int    `json:"numberOfChapters"`
}

type Translation struct {
	ID    string `json:"id"`
	Books []Book `json:"books"`
}

func (t *Translation) OldTestament() []Book {
	if len(t.Books) <= OldTestamentBooks {
		return t.Books
	}
	return t.Books[:OldTestamentBooks]
}

func (t *Translation) NewTestament() []Book {
	if len(t.Books) <= OldTestamentBooks {
		return nil
	}
	return t.Books[OldTestamentBooks:]
}

// ContentItem is one element of a chapter: a verse or a structural marker
// such as a heading or line break.
type ContentItem struct {
	Type    string          `json:"type"`
	Number  int             `json:"number,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

func (c *ContentItem) IsVerse() bool {
	return c.Type == ContentTypeVerse
}

// Text flattens the item content into one string. Content may be absent, a
// plain string, or a list mixing strings and {"text": ...} fragments; anything
// else contributes nothing.
func (c *ContentItem) Text() string {
	if len(c.Content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(c.Content, &s); err == nil {
		return s
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(c.Content, &parts); err != nil {
		return ""
	}

	pieces := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := fragmentText(p); t != "" {
			pieces = append(pieces, t)
		}
	}
	return strings.Join(pieces, " ")
}

func fragmentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var frag struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &frag); err == nil {
		return frag.Text
	}
	return ""
}

type ChapterDocument struct {
	TranslationID string        `json:"translationId"`
	BookID        string        `json:"bookId"`
	Number        int           `json:"number"`
	Content       []ContentItem `json:"content"`
}

// Verses returns the verse items of the chapter in document order.
func (d *ChapterDocument) Verses() []ContentItem {
	verses := make([]ContentItem, 0, len(d.Content))
	for _, item := range d.Content {
		if item.IsVerse() {
			verses = append(verses, item)
		}
	}
	return verses
}
