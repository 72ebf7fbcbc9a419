// Package notes keeps mnemonic notes attached to words, grouped by category.
package notes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/tokens"
)

// DefaultCategories always exist in a Book.
var DefaultCategories = []string{"People", "Objects", "Places", "Events", "Actions"}

var (
	// ErrInvalidDocument is returned when an imported document is not a
	// mapping of category names to note lists.
	ErrInvalidDocument = errors.New("invalid notes document")
	// ErrUnknownCategory is returned for operations on a missing category.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidNote is returned when a note fails validation.
	ErrInvalidNote = errors.New("invalid note")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var trailingPunct = regexp.MustCompile(`^(.*?)([.!?,;:]+)$`)

// Book is an ordered set of categories. The zero value is not ready for use;
// call New.
type Book struct {
	order   []string
	entries map[string][]model.Note
}

// New returns a Book holding only the default categories.
func New() *Book {
	b := &Book{entries: map[string][]model.Note{}}
	b.ensureDefaults()
	return b
}

// FromCategories builds a Book from stored categories, adding missing defaults.
func FromCategories(categories []model.Category) *Book {
	b := &Book{entries: map[string][]model.Note{}}
	for _, c := range categories {
		b.addCategory(c.Name)
		b.entries[c.Name] = append(b.entries[c.Name], c.Notes...)
	}
	b.ensureDefaults()
	return b
}

// Categories returns a copy of the book contents in category order.
func (b *Book) Categories() []model.Category {
	out := make([]model.Category, 0, len(b.order))
	for _, name := range b.order {
		notes := make([]model.Note, len(b.entries[name]))
		copy(notes, b.entries[name])
		out = append(out, model.Category{Name: name, Notes: notes})
	}
	return out
}

// CategoryNames returns the category names in order.
func (b *Book) CategoryNames() []string {
	return append([]string(nil), b.order...)
}

// AddCategory adds an empty category. Blank names and existing categories are
// ignored.
func (b *Book) AddCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return b.addCategory(name)
}

// RemoveCategory deletes a category and its notes. Default categories come
// back empty.
func (b *Book) RemoveCategory(name string) error {
	if _, ok := b.entries[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownCategory, name)
	}
	delete(b.entries, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.ensureDefaults()
	return nil
}

// Add appends a note to a category, creating the category if needed.
func (b *Book) Add(category, word, desc string) error {
	note, err := newNote(word, desc)
	if err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category is empty", ErrInvalidNote)
	}
	b.addCategory(category)
	b.entries[category] = append(b.entries[category], note)
	return nil
}

// Upsert sets the description of word in category, replacing an existing
// note for the same word (case-insensitive) or appending a new one.
func (b *Book) Upsert(category, word, desc string) error {
	note, err := newNote(word, desc)
	if err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("%w: category is empty", ErrInvalidNote)
	}
	b.addCategory(category)
	for i, existing := range b.entries[category] {
		if strings.EqualFold(existing.Word, note.Word) {
			b.entries[category][i].Desc = note.Desc
			return nil
		}
	}
	b.entries[category] = append(b.entries[category], note)
	return nil
}

// RemoveNote deletes the note at index in category.
func (b *Book) RemoveNote(category string, index int) error {
	notes, ok := b.entries[category]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	if index < 0 || index >= len(notes) {
		return fmt.Errorf("note index %d out of range (category %q has %d notes)", index, category, len(notes))
	}
	b.entries[category] = append(notes[:index], notes[index+1:]...)
	return nil
}

// Lookup returns the description of the first note whose word normalizes to
// token, searching categories in order.
func (b *Book) Lookup(token string) (string, bool) {
	_, desc, ok := b.Locate(token)
	return desc, ok
}

// Locate is Lookup that also reports the category holding the note.
func (b *Book) Locate(token string) (category, desc string, ok bool) {
	token = tokens.Normalize(token)
	if token == "" {
		return "", "", false
	}
	for _, name := range b.order {
		for _, n := range b.entries[name] {
			if tokens.Normalize(n.Word) == token {
				return name, n.Desc, true
			}
		}
	}
	return "", "", false
}

// Key strips surrounding punctuation from a displayed word so it can be
// stored as a note word: "Paris," becomes "Paris".
func Key(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Hit is a search result.
type Hit struct {
	Category string
	Index    int
	Note     model.Note
}

// Search returns notes whose word contains query, ignoring case.
func (b *Book) Search(query string) []Hit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var hits []Hit
	for _, name := range b.order {
		for i, n := range b.entries[name] {
			if strings.Contains(strings.ToLower(n.Word), query) {
				hits = append(hits, Hit{Category: name, Index: i, Note: n})
			}
		}
	}
	return hits
}

// MarshalJSON encodes the book as {"Category": [{"word": ..., "desc": ...}]}.
func (b *Book) MarshalJSON() ([]byte, error) {
	doc := make(map[string][]model.Note, len(b.order))
	for _, name := range b.order {
		notes := b.entries[name]
		if notes == nil {
			notes = []model.Note{}
		}
		doc[name] = notes
	}
	return json.Marshal(doc)
}

// Export writes the book as indented JSON.
func (b *Book) Export(w io.Writer) error {
	data, err := b.MarshalJSON()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

// Import replaces the book contents with the document read from r. On any
// error the book is left unchanged.
func (b *Book) Import(r io.Reader) error {
	var doc map[string][]model.Note
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after document", ErrInvalidDocument)
	}
	if doc == nil {
		return fmt.Errorf("%w: document is not a mapping", ErrInvalidDocument)
	}
	names := make([]string, 0, len(doc))
	for name, notes := range doc {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty category name", ErrInvalidDocument)
		}
		for i, n := range notes {
			if err := validate.Struct(n); err != nil {
				return fmt.Errorf("%w: %s[%d]: %v", ErrInvalidDocument, name, i, err)
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	next := &Book{entries: map[string][]model.Note{}}
	for _, name := range DefaultCategories {
		if _, ok := doc[name]; ok {
			next.addCategory(name)
		}
	}
	for _, name := range names {
		next.addCategory(name)
		next.entries[name] = append([]model.Note{}, doc[name]...)
	}
	next.ensureDefaults()

	b.order = next.order
	b.entries = next.entries
	return nil
}

// Annotate renders word followed by its note. Trailing punctuation stays at
// the end: "river." becomes "river (flows east).".
func Annotate(word, desc string) string {
	if desc == "" {
		return word
	}
	if m := trailingPunct.FindStringSubmatch(word); m != nil {
		return fmt.Sprintf("%s (%s)%s", m[1], desc, m[2])
	}
	return fmt.Sprintf("%s (%s)", word, desc)
}

func newNote(word, desc string) (model.Note, error) {
	note := model.Note{Word: strings.TrimSpace(word), Desc: strings.TrimSpace(desc)}
	if err := validate.Struct(note); err != nil {
		return model.Note{}, fmt.Errorf("%w: %v", ErrInvalidNote, err)
	}
	return note, nil
}

func (b *Book) addCategory(name string) bool {
	if _, ok := b.entries[name]; ok {
		return false
	}
	b.entries[name] = []model.Note{}
	b.order = append(b.order, name)
	return true
}

func (b *Book) ensureDefaults() {
	for _, name := range DefaultCategories {
		b.addCategory(name)
	}
}
