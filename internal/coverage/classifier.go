package coverage

import (
	"fmt"
	"strings"
)

// Classifier maps free-text category labels onto a Taxonomy.
type Classifier struct {
	taxonomy *Taxonomy
}

// NewClassifier creates a classifier over taxonomy, or the default taxonomy
// when nil.
func NewClassifier(taxonomy *Taxonomy) *Classifier {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Classifier{taxonomy: taxonomy}
}

// Classify normalizes label and returns the first matching class.
// Non-string labels are formatted first; nil is the empty label.
func (c *Classifier) Classify(label any) Class {
	return c.ClassifyNormalized(NormalizeText(labelString(label)))
}

// ClassifyNormalized classifies an already normalized label.
func (c *Classifier) ClassifyNormalized(normalized string) Class {
	for _, e := range c.taxonomy.entries {
		for _, p := range e.Patterns {
			if strings.Contains(normalized, p) {
				return e.Class
			}
		}
	}
	return ClassUnclassified
}

func labelString(label any) string {
	switch v := label.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
