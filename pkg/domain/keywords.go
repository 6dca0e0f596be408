package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// KeywordEntry is one row of the keyword table
type KeywordEntry struct {
	Category Category
	Keywords []string
}

// KeywordTable is an ordered mapping of category to keyword substrings.
// Order follows the document it was decoded from, the first matching row wins.
type KeywordTable struct {
	m *orderedmap.OrderedMap[string, []string]
}

// NewKeywordTable makes a table from entries, preserving their order
func NewKeywordTable(entries ...KeywordEntry) KeywordTable {
	t := KeywordTable{m: orderedmap.New[string, []string]()}
	for _, e := range entries {
		if e.Keywords == nil {
			e.Keywords = []string{}
		}
		t.m.Set(string(e.Category), e.Keywords)
	}
	return t
}

// ParseKeywordTable decodes a JSON object of category to keyword list
func ParseKeywordTable(data []byte) (KeywordTable, error) {
	var t KeywordTable
	if err := json.Unmarshal(data, &t); err != nil {
		return KeywordTable{}, err
	}
	if t.Len() == 0 {
		return KeywordTable{}, fmt.Errorf("keyword table is empty")
	}
	return t, nil
}

// Len returns number of categories in the table
func (t KeywordTable) Len() int {
	if t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Get returns keywords for the category
func (t KeywordTable) Get(c Category) ([]string, bool) {
	if t.m == nil {
		return nil, false
	}
	return t.m.Get(string(c))
}

// Entries returns table rows in order
func (t KeywordTable) Entries() []KeywordEntry {
	if t.m == nil {
		return nil
	}
	res := make([]KeywordEntry, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, KeywordEntry{Category: Category(pair.Key), Keywords: pair.Value})
	}
	return res
}

// Categories returns category names in table order
func (t KeywordTable) Categories() []Category {
	entries := t.Entries()
	res := make([]Category, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.Category)
	}
	return res
}

// Clone makes an independent copy of the table
func (t KeywordTable) Clone() KeywordTable {
	entries := t.Entries()
	for i := range entries {
		entries[i].Keywords = cloneSlice(entries[i].Keywords)
	}
	return NewKeywordTable(entries...)
}

// MarshalJSON keeps category order
func (t KeywordTable) MarshalJSON() ([]byte, error) {
	if t.m == nil {
		return []byte("{}"), nil
	}
	return t.m.MarshalJSON()
}

// UnmarshalJSON decodes the table keeping document order
func (t *KeywordTable) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, []string]()
	if err := m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode keyword table: %w", err)
	}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if strings.TrimSpace(pair.Key) == "" {
			return fmt.Errorf("decode keyword table: empty category name")
		}
		if pair.Value == nil {
			m.Set(pair.Key, []string{})
		}
	}
	t.m = m
	return nil
}

// MarshalYAML emits the table as an ordered mapping node
func (t KeywordTable) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t.Entries() {
		var val yaml.Node
		if err := val.Encode(e.Keywords); err != nil {
			return nil, fmt.Errorf("encode keywords for %s: %w", e.Category, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: string(e.Category)}, &val)
	}
	return node, nil
}

// UnmarshalYAML walks mapping pairs in document order
func (t *KeywordTable) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("keyword table must be a mapping, got line %d", value.Line)
	}
	m := orderedmap.New[string, []string]()
	for i := 0; i+1 < len(value.Content); i += 2 {
		var keywords []string
		if err := value.Content[i+1].Decode(&keywords); err != nil {
			return fmt.Errorf("decode keywords for %s: %w", value.Content[i].Value, err)
		}
		if keywords == nil {
			keywords = []string{}
		}
		m.Set(value.Content[i].Value, keywords)
	}
	t.m = m
	return nil
}
