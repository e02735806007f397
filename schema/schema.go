// Package schema classifies groups by the role their tag plays in a document.
package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/burntcarrot/treepad/doc"
)

// TrackType is the structural role of a group.
type TrackType int

const (
	Lists TrackType = iota + 1
	ListItems
	BlockQuotes
	Blocks
	BlockObjects
	Inlines
	InlineObjects
	Carets
)

var trackNames = map[TrackType]string{
	Lists:         "Lists",
	ListItems:     "ListItems",
	BlockQuotes:   "BlockQuotes",
	Blocks:        "Blocks",
	BlockObjects:  "BlockObjects",
	Inlines:       "Inlines",
	InlineObjects: "InlineObjects",
	Carets:        "Carets",
}

var (
	ErrUnknownTrack  = errors.New("unknown track type")
	ErrDuplicateTag  = errors.New("tag assigned to more than one track")
	ErrInvalidConfig = errors.New("invalid schema config")
)

func (t TrackType) String() string {
	if name, ok := trackNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TrackType(%d)", int(t))
}

// ParseTrackType returns the track type with the given name.
func ParseTrackType(name string) (TrackType, error) {
	for t, n := range trackNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTrack, name)
}

// Schema maps group tags to track types. A Schema is read-only once built
// and safe for concurrent use.
type Schema struct {
	tags map[string]TrackType
}

// New builds a schema from the tags assigned to each track.
func New(tracks map[TrackType][]string) (*Schema, error) {
	s := &Schema{tags: make(map[string]TrackType)}

	for track, tags := range tracks {
		if _, ok := trackNames[track]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnknownTrack, track)
		}
		for _, tag := range tags {
			if prev, ok := s.tags[tag]; ok && prev != track {
				return nil, fmt.Errorf("%w: %q in %v and %v", ErrDuplicateTag, tag, prev, track)
			}
			s.tags[tag] = track
		}
	}

	return s, nil
}

// Default is the rich text schema used when no other is configured.
var Default = &Schema{tags: map[string]TrackType{
	"bullet": ListItems,
	"h1":     Blocks,
	"h2":     Blocks,
	"h3":     Blocks,
	"h4":     Blocks,
	"h5":     Blocks,
	"h6":     Blocks,
	"p":      Blocks,
	"pre":    Blocks,
	"html":   Blocks,
	"hr":     BlockObjects,
	"span":   Inlines,
	"b":      Inlines,
	"i":      Inlines,
	"caret":  Carets,
	"cursor": Carets,
}}

// Classify returns the track type of a group with the given attributes.
func (s *Schema) Classify(attrs doc.Attrs) (TrackType, bool) {
	t, ok := s.tags[attrs.Tag()]
	return t, ok
}

// IsBlock reports whether the group is a block boundary.
func (s *Schema) IsBlock(attrs doc.Attrs) bool {
	t, ok := s.Classify(attrs)
	return ok && t == Blocks
}

// Tags returns the sorted tags assigned to track.
func (s *Schema) Tags(track TrackType) []string {
	var tags []string
	for tag, t := range s.tags {
		if t == track {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Classify classifies attrs with the Default schema.
func Classify(attrs doc.Attrs) (TrackType, bool) {
	return Default.Classify(attrs)
}
