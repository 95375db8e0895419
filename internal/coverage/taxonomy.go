package coverage

// Class is a taxonomy key assigned to a category label.
type Class string

const (
	ClassUnclassified     Class = ""
	ClassConsensus        Class = "consensus"
	ClassBeginningStock   Class = "beginning_stock"
	ClassTransportReceipt Class = "transport_receipt"
	ClassRecommendedOrder Class = "recommended_order"
	ClassProjectedStock   Class = "projected_stock"
	ClassDOC              Class = "doc"
)

// String returns the key, or "unclassified" for the zero class.
func (c Class) String() string {
	if c == ClassUnclassified {
		return "unclassified"
	}
	return string(c)
}

// TaxonomyEntry is one key and its ordered substring patterns.
type TaxonomyEntry struct {
	Class    Class
	Patterns []string
}

// Taxonomy is an ordered, read-only set of entries. Classification scans
// entries and patterns in declaration order and stops at the first hit.
type Taxonomy struct {
	entries []TaxonomyEntry
}

// NewTaxonomy copies the entries and normalizes every pattern. Empty
// patterns are dropped since they would match every label.
func NewTaxonomy(entries []TaxonomyEntry) *Taxonomy {
	t := &Taxonomy{entries: make([]TaxonomyEntry, 0, len(entries))}
	for _, e := range entries {
		patterns := make([]string, 0, len(e.Patterns))
		for _, p := range e.Patterns {
			if n := NormalizeText(p); n != "" {
				patterns = append(patterns, n)
			}
		}
		t.entries = append(t.entries, TaxonomyEntry{Class: e.Class, Patterns: patterns})
	}
	return t
}

// Entries returns a copy of the normalized entries.
func (t *Taxonomy) Entries() []TaxonomyEntry {
	out := make([]TaxonomyEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = TaxonomyEntry{Class: e.Class, Patterns: append([]string(nil), e.Patterns...)}
	}
	return out
}

// DefaultTaxonomy returns the key-figure taxonomy used by planning exports.
// The bare "consensus" pattern intentionally over-matches.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy([]TaxonomyEntry{
		{Class: ClassConsensus, Patterns: []string{
			"kisit siz consensus",
			"consensus",
			"kisit siz consensus sell in forecast / malzeme tuketim mik",
			"kisit siz consensus forecast / malzeme tuketim mik",
			"kisit siz consensus sell in forecast / malzeme tuketim mik.",
			"kısıtsız consensus sell-in forecast / malzeme tüketim mik",
			"kısıtsız consensus sell-in forecast / malzeme tüketim mik.",
		}},
		{Class: ClassBeginningStock, Patterns: []string{"baslangic stok", "beginning stock"}},
		{Class: ClassTransportReceipt, Patterns: []string{"transport receipt"}},
		{Class: ClassRecommendedOrder, Patterns: []string{"recommended order"}},
		{Class: ClassProjectedStock, Patterns: []string{
			"unconstrained projected stock",
			"projected stock",
			"unconstrainded projected stock",
		}},
		{Class: ClassDOC, Patterns: []string{"unconstrained days of coverage", "days of coverage"}},
	})
}
