package promotion

import "strings"

// Direction states whether larger or smaller values of a metric indicate a
// better model
type Direction string

const (
	Maximize Direction = "maximize"
	Minimize Direction = "minimize"
)

// Metric name fragments classified as higher-is-better. Matching is by
// case-sensitive substring containment, so "validation:accuracy" matches
// "accuracy". A name that merely contains one of these fragments with a
// different meaning would be misclassified; the behavior is kept as-is for
// compatibility with existing metric names.
var maximizeFragments = []string{"accuracy", "auc", "f1", "map", "ndcg"}

// ClassifyMetric derives the comparison direction from a metric name
func ClassifyMetric(name string) Direction {
	for _, fragment := range maximizeFragments {
		if strings.Contains(name, fragment) {
			return Maximize
		}
	}
	return Minimize
}
