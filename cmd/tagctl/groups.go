package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"media-tags/internal/tags"
)

// parseReference reads "#42" as a tag id reference and anything else as a
// label.
func parseReference(s string) tags.Reference {
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil {
			return tags.ID(id)
		}
	}
	return tags.Label(s)
}

// parseGroupFlag reads one --group value: comma separated references, the
// whole group negated by a leading '!'.
func parseGroupFlag(s string) *tags.Group {
	g := &tags.Group{}
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		g.Negate = true
		s = rest
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		g.References = append(g.References, parseReference(part))
	}
	return g
}

// groupsFile is the YAML form of a group list:
//
//	groups:
//	  - refs: [cat, 12, "#7"]
//	  - refs: [sketch]
//	    negate: true
//
// Integers and "#N" strings are tag ids, other strings are labels.
type groupsFile struct {
	Groups []groupSpec `yaml:"groups"`
}

type groupSpec struct {
	Refs   []refSpec `yaml:"refs"`
	Negate bool      `yaml:"negate"`
}

type refSpec struct {
	ref tags.Reference
}

func (r *refSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: reference must be a scalar", value.Line)
	}
	if value.ShortTag() == "!!int" {
		var id int64
		if err := value.Decode(&id); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		r.ref = tags.ID(id)
		return nil
	}
	r.ref = parseReference(value.Value)
	return nil
}

func loadGroupsFile(path string) ([]*tags.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read groups file: %w", err)
	}
	return parseGroupsFile(data)
}

func parseGroupsFile(data []byte) ([]*tags.Group, error) {
	var f groupsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse groups file: %w", err)
	}

	groups := make([]*tags.Group, 0, len(f.Groups))
	for _, spec := range f.Groups {
		g := &tags.Group{Negate: spec.Negate}
		for _, r := range spec.Refs {
			g.References = append(g.References, r.ref)
		}
		groups = append(groups, g)
	}
	return groups, nil
}
