package backup

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"media-tags/internal/database"
	"media-tags/internal/tags"
)

// TagKey identifies a tag independently of its id.
type TagKey struct {
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
}

func (k TagKey) String() string {
	return fmt.Sprintf("%s (%s)", k.Title, k.Category)
}

// TagDocument is the portable form of one tag.
type TagDocument struct {
	Title    string   `json:"title" yaml:"title"`
	Category string   `json:"category" yaml:"category"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Parent   *TagKey  `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Key returns the document's tag key.
func (d TagDocument) Key() TagKey {
	return TagKey{Title: d.Title, Category: d.Category}
}

// Dump is a full tag graph export.
type Dump struct {
	Tags []TagDocument `json:"tags" yaml:"tags"`
}

// Export reads every tag with its aliases and parent key, in id order.
func Export(ctx context.Context, q database.Querier) (Dump, error) {
	all, err := tags.ListTags(ctx, q)
	if err != nil {
		return Dump{}, err
	}

	keys := make(map[int64]TagKey, len(all))
	for _, t := range all {
		keys[t.ID] = TagKey{Title: t.Title, Category: t.Category}
	}

	dump := Dump{Tags: make([]TagDocument, 0, len(all))}
	for _, t := range all {
		aliases, err := tags.Aliases(ctx, q, t.ID)
		if err != nil {
			return Dump{}, err
		}
		doc := TagDocument{Title: t.Title, Category: t.Category, Aliases: aliases}
		if t.Parent != nil {
			if parent, ok := keys[*t.Parent]; ok {
				doc.Parent = &parent
			}
		}
		dump.Tags = append(dump.Tags, doc)
	}
	return dump, nil
}

// WriteYAML encodes dump to w.
func WriteYAML(w io.Writer, dump Dump) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode tag dump: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes a dump written by WriteYAML. Documents without a title
// are rejected.
func ReadYAML(r io.Reader) (Dump, error) {
	var dump Dump
	if err := yaml.NewDecoder(r).Decode(&dump); err != nil && err != io.EOF {
		return Dump{}, fmt.Errorf("failed to decode tag dump: %w", err)
	}
	for i, doc := range dump.Tags {
		if doc.Title == "" {
			return Dump{}, fmt.Errorf("tag document %d: %w", i, tags.ErrEmptyTitle)
		}
	}
	return dump, nil
}
