package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Profile errors.
var (
	ErrDuplicateName = errors.New("name already exists")
	ErrUnknownParent = errors.New("unknown parent name")
	ErrUnknownTheme  = errors.New("unknown theme")
)

// Themes the UI can render. An empty theme means the default.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidateTheme checks that name is a theme the UI can render. The empty
// string is accepted and resets the preference to the default.
func ValidateTheme(name string) error {
	switch name {
	case "", ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("%w: %q, want %s or %s", ErrUnknownTheme, name, ThemeLight, ThemeDark)
}

// NameTree is an ordered mapping from a name to an ordered list of child
// names. The profile stores two of these: categories (category to
// subcategories) and accounts (account to cards, currently always empty).
// Entries are append-only; JSON round-trips preserve insertion order.
type NameTree struct {
	children map[string][]string
	names    []string
}

// NewNameTree returns an empty tree.
func NewNameTree() *NameTree {
	return &NameTree{children: make(map[string][]string)}
}

// Names returns the top-level names in insertion order.
func (t *NameTree) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Children returns the child list for name and whether the name exists.
func (t *NameTree) Children(name string) ([]string, bool) {
	if t.children == nil {
		return nil, false
	}
	kids, ok := t.children[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(kids))
	copy(out, kids)
	return out, true
}

// Has reports whether a top-level name exists.
func (t *NameTree) Has(name string) bool {
	_, ok := t.children[name]
	return ok
}

// Len returns the number of top-level names.
func (t *NameTree) Len() int {
	return len(t.names)
}

// Add appends a new top-level name with an empty child list.
func (t *NameTree) Add(name string) error {
	if t.children == nil {
		t.children = make(map[string][]string)
	}
	if _, ok := t.children[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	t.children[name] = []string{}
	t.names = append(t.names, name)
	return nil
}

// AddChild appends a child name under an existing parent. Child names must
// be unique within their parent.
func (t *NameTree) AddChild(parent, child string) error {
	kids, ok := t.children[parent]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParent, parent)
	}
	for _, existing := range kids {
		if existing == child {
			return fmt.Errorf("%w: %q under %q", ErrDuplicateName, child, parent)
		}
	}
	t.children[parent] = append(kids, child)
	return nil
}

// MarshalJSON encodes the tree as a JSON object in insertion order.
func (t *NameTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range t.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		kids := t.children[name]
		if kids == nil {
			kids = []string{}
		}
		val, err := json.Marshal(kids)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order.
func (t *NameTree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	t.names = nil
	t.children = make(map[string][]string)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", keyTok)
		}

		var kids []string
		if err := dec.Decode(&kids); err != nil {
			return fmt.Errorf("invalid child list for %q: %w", key, err)
		}
		if kids == nil {
			kids = []string{}
		}
		if _, dup := t.children[key]; !dup {
			t.names = append(t.names, key)
		}
		t.children[key] = kids
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Settings holds per-user preference flags stored on the profile.
type Settings struct {
	UpcomingNotifications bool `json:"upcomingNotifications"`
}

// Profile is the per-user record holding the category tree, the account
// list, and UI preferences.
type Profile struct {
	Categories *NameTree
	Accounts   *NameTree
	UserID     string
	Theme      string
	Settings   Settings
}

// NewProfile returns an empty profile for a user.
func NewProfile(userID string) *Profile {
	return &Profile{
		UserID:     userID,
		Categories: NewNameTree(),
		Accounts:   NewNameTree(),
	}
}
