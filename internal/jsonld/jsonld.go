// Package jsonld decodes the schema.org records embedded in
// <script type="application/ld+json"> blocks.
package jsonld

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"comic_poster/internal/domain"
)

var ErrEmptyBlock = errors.New("empty block")

// node is the subset of a JSON-LD object we care about.
type node struct {
	Type                 stringList `json:"@type"`
	Graph                []node     `json:"@graph"`
	Name                 text       `json:"name"`
	ContentURL           text       `json:"contentUrl"`
	URL                  text       `json:"url"`
	DatePublished        text       `json:"datePublished"`
	RepresentativeOfPage flexBool   `json:"representativeOfPage"`
}

// stringList accepts either "T" or ["T1", "T2"].
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("@type: %w", err)
	}
	*l = many
	return nil
}

// text reads a property that may hold a plain value, a list of values or a
// value object. Lists resolve to their first non-empty entry and objects to
// their @value, @id or url.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
	case '[':
		var items []text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*t = ""
		for _, item := range items {
			if item != "" {
				*t = item
				break
			}
		}
	case '{':
		var obj struct {
			Value text `json:"@value"`
			ID    text `json:"@id"`
			URL   text `json:"url"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		switch {
		case obj.Value != "":
			*t = obj.Value
		case obj.ID != "":
			*t = obj.ID
		default:
			*t = obj.URL
		}
	default:
		if string(data) == "null" {
			*t = ""
			return nil
		}
		*t = text(data)
	}
	return nil
}

// flexBool accepts true/false as well as "true"/"false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(strings.Trim(string(data), `"`)) {
	case "true":
		*b = true
	case "false", "null", "":
		*b = false
	default:
		return fmt.Errorf("representativeOfPage: invalid value %s", data)
	}
	return nil
}

// Parse decodes a raw block into its records, in order. A block may contain a
// single object, an array of objects or an object with an @graph.
func Parse(raw string) ([]domain.ComicMetadata, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, ErrEmptyBlock
	}

	var nodes []node
	if data[0] == '[' {
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	} else {
		var n node
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("decode object: %w", err)
		}
		nodes = []node{n}
	}

	var records []domain.ComicMetadata
	for _, n := range nodes {
		records = appendNode(records, n)
	}
	return records, nil
}

func appendNode(records []domain.ComicMetadata, n node) []domain.ComicMetadata {
	if len(n.Type) > 0 {
		records = append(records, domain.ComicMetadata{
			Types:                n.Type,
			Name:                 string(n.Name),
			ContentURL:           string(n.ContentURL),
			URL:                  string(n.URL),
			DatePublished:        string(n.DatePublished),
			RepresentativeOfPage: bool(n.RepresentativeOfPage),
		})
	}
	for _, child := range n.Graph {
		records = appendNode(records, child)
	}
	return records
}

// FirstEligible returns the first record in the block that can stand for the strip.
func FirstEligible(records []domain.ComicMetadata) (domain.ComicMetadata, bool) {
	for _, r := range records {
		if r.Eligible() {
			return r, true
		}
	}
	return domain.ComicMetadata{}, false
}
