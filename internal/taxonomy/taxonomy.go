// Package taxonomy carries the fixed vulnerability category vocabulary that
// every submission must be classified under.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed vulnerability-rating-taxonomy.json
var rawTaxonomy []byte

type taxonomyFile struct {
	Categories []string `json:"categories"`
}

var categories []string
var categoriesByFold map[string]string

func init() {
	var parsed taxonomyFile
	if err := json.Unmarshal(rawTaxonomy, &parsed); err != nil {
		panic("taxonomy: embedded vulnerability-rating-taxonomy.json is malformed: " + err.Error())
	}

	categories = parsed.Categories
	categoriesByFold = make(map[string]string, len(categories))
	for _, c := range categories {
		categoriesByFold[strings.ToLower(c)] = c
	}
}

// Categories returns the vocabulary in file order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Canonical maps case-insensitive input onto the canonical category spelling.
// Returns false for anything outside the vocabulary.
func Canonical(category string) (string, bool) {
	c, ok := categoriesByFold[strings.ToLower(strings.TrimSpace(category))]
	return c, ok
}

func Valid(category string) bool {
	_, ok := Canonical(category)
	return ok
}
