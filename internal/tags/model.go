package tags

import (
	"errors"
	"fmt"
	"strconv"
)

// Categories with special meaning to registration. All other categories
// are opaque strings.
const (
	CategoryContent   = "content"
	CategoryCharacter = "character"
	CategoryArtist    = "artist"
)

// Storage limits for titles and aliases.
const (
	TitleMaxSize = 240
	AliasMaxSize = 255
)

var (
	ErrEmptyTitle          = errors.New("tag title cannot be empty")
	ErrTagNotFound         = errors.New("tag not found")
	ErrDuplicateTag        = errors.New("tag with this title and category already exists")
	ErrAliasExists         = errors.New("alias already exists")
	ErrAliasConflict       = errors.New("alias is bound to an unrelated tag")
	ErrParentCycle         = errors.New("parent would create a cycle")
	ErrSelfMerge           = errors.New("cannot merge a tag into itself")
	ErrNilGroup            = errors.New("tag group is nil")
	ErrInvalidReference    = errors.New("invalid tag reference")
	ErrInvalidOrdering     = errors.New("invalid ordering")
	ErrInvalidHiddenFilter = errors.New("invalid hidden filter")
	ErrInvalidStrategy     = errors.New("invalid random strategy")
	ErrNegativePagination  = errors.New("limit and offset must be non-negative")
)

// Tag is one node of the tag graph.
type Tag struct {
	ID       int64  `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	Parent   *int64 `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Alias is an alternate lookup string for a tag.
type Alias struct {
	TagID int64  `json:"tagId" yaml:"tag_id"`
	Title string `json:"title" yaml:"title"`
}

type referenceKind uint8

const (
	refInvalid referenceKind = iota
	refLabel
	refID
)

// Reference names tags in a query group: either a label matched against
// titles and aliases, or a tag id standing for the tag and its descendants.
// The zero Reference is invalid.
type Reference struct {
	kind  referenceKind
	label string
	id    int64
}

// Label references every tag whose title or alias equals s.
func Label(s string) Reference {
	return Reference{kind: refLabel, label: s}
}

// ID references the tag id and its whole subtree.
func ID(id int64) Reference {
	return Reference{kind: refID, id: id}
}

// IsLabel reports whether r is a label reference.
func (r Reference) IsLabel() bool { return r.kind == refLabel }

// IsID reports whether r is an id reference.
func (r Reference) IsID() bool { return r.kind == refID }

// LabelValue returns the label of a label reference.
func (r Reference) LabelValue() string { return r.label }

// IDValue returns the id of an id reference.
func (r Reference) IDValue() int64 { return r.id }

func (r Reference) validate() error {
	switch r.kind {
	case refLabel:
		return nil
	case refID:
		if r.id <= 0 {
			return fmt.Errorf("%w: tag id %d", ErrInvalidReference, r.id)
		}
		return nil
	default:
		return fmt.Errorf("%w: zero reference", ErrInvalidReference)
	}
}

func (r Reference) String() string {
	switch r.kind {
	case refLabel:
		return strconv.Quote(r.label)
	case refID:
		return "#" + strconv.FormatInt(r.id, 10)
	default:
		return "<invalid>"
	}
}

// Group is one AND-ed clause of a content query: content matches when it
// carries any of the referenced tags, or none of them when Negate is set.
type Group struct {
	References []Reference
	Negate     bool
}

// Ordering selects the ORDER BY of a content query.
type Ordering int

const (
	OrderNone Ordering = iota
	OrderDateDesc
	OrderDateAsc
	OrderRandom
)

func (o Ordering) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderDateDesc:
		return "date_desc"
	case OrderDateAsc:
		return "date_asc"
	case OrderRandom:
		return "random"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// ParseOrdering parses the String form of an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "none":
		return OrderNone, nil
	case "date_desc", "newest":
		return OrderDateDesc, nil
	case "date_asc", "oldest":
		return OrderDateAsc, nil
	case "random":
		return OrderRandom, nil
	default:
		return OrderNone, fmt.Errorf("%w: %q", ErrInvalidOrdering, s)
	}
}

// HiddenFilter selects how hidden content is treated.
type HiddenFilter int

const (
	FilterHidden HiddenFilter = iota
	ShowAll
	OnlyHidden
)

func (h HiddenFilter) String() string {
	switch h {
	case FilterHidden:
		return "filter"
	case ShowAll:
		return "show"
	case OnlyHidden:
		return "only"
	default:
		return fmt.Sprintf("unknown(%d)", int(h))
	}
}

// ParseHiddenFilter parses the String form of a HiddenFilter.
func ParseHiddenFilter(s string) (HiddenFilter, error) {
	switch s {
	case "", "filter":
		return FilterHidden, nil
	case "show", "all":
		return ShowAll, nil
	case "only":
		return OnlyHidden, nil
	default:
		return FilterHidden, fmt.Errorf("%w: %q", ErrInvalidHiddenFilter, s)
	}
}

// RandomStrategy selects how OrderRandom is realised.
type RandomStrategy int

const (
	// RandomSQL orders by the engine's random primitive.
	RandomSQL RandomStrategy = iota
	// RandomClient fetches in engine order and shuffles the rows in memory.
	RandomClient
)

func (s RandomStrategy) String() string {
	switch s {
	case RandomSQL:
		return "sql"
	case RandomClient:
		return "client"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseRandomStrategy parses the String form of a RandomStrategy.
func ParseRandomStrategy(s string) (RandomStrategy, error) {
	switch s {
	case "", "sql":
		return RandomSQL, nil
	case "client":
		return RandomClient, nil
	default:
		return RandomSQL, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}
