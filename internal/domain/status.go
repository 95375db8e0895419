package domain

import (
	"strings"

	"github.com/andresuchdata/doccover/backend-go/internal/coverage"
)

var classLabels = map[coverage.Class]string{
	coverage.ClassConsensus:        "Consensus demand",
	coverage.ClassBeginningStock:   "Beginning stock",
	coverage.ClassTransportReceipt: "Transport receipt",
	coverage.ClassRecommendedOrder: "Recommended order",
	coverage.ClassProjectedStock:   "Projected stock",
	coverage.ClassDOC:              "Days of coverage",
}

var classCodes = map[string]coverage.Class{
	"consensus":         coverage.ClassConsensus,
	"beginning_stock":   coverage.ClassBeginningStock,
	"transport_receipt": coverage.ClassTransportReceipt,
	"recommended_order": coverage.ClassRecommendedOrder,
	"projected_stock":   coverage.ClassProjectedStock,
	"doc":               coverage.ClassDOC,
	"unclassified":      coverage.ClassUnclassified,
}

// ClassLabel returns a human-readable label for a class.
func ClassLabel(class coverage.Class) string {
	if label, ok := classLabels[class]; ok {
		return label
	}

	return "Unclassified"
}

// ParseClass returns the class for a given code (case-insensitive).
func ParseClass(code string) (coverage.Class, bool) {
	class, ok := classCodes[strings.ToLower(strings.TrimSpace(code))]

	return class, ok
}
