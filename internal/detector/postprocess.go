package detector

import (
	"image"
	"sort"

	"go-object-recognizer/pkg/models"
)

// rawDetection is one candidate emitted by the model before filtering.
type rawDetection struct {
	ClassID int
	Score   float64
	Box     image.Rectangle
}

// filterByScore keeps detections whose score passes the threshold. The
// threshold is inclusive, so a threshold above 1.0 keeps nothing.
func filterByScore(dets []rawDetection, threshold float64) []rawDetection {
	kept := make([]rawDetection, 0, len(dets))
	for _, d := range dets {
		if d.Score >= threshold {
			kept = append(kept, d)
		}
	}
	return kept
}

// topByScore returns the max highest-scoring detections in descending score
// order. Ties keep the original detection order; callers must not rely on any
// particular tie order. max <= 0 yields an empty result.
func topByScore(dets []rawDetection, max int) []rawDetection {
	if max <= 0 {
		return []rawDetection{}
	}

	sorted := make([]rawDetection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

// mapLabels resolves class IDs against the label table, preserving input
// order. Out-of-range IDs are dropped without error, as are the background
// class and placeholder entries.
func mapLabels(dets []rawDetection, labels []string) []models.RecognizedObject {
	objects := make([]models.RecognizedObject, 0, len(dets))
	for _, d := range dets {
		if d.ClassID < 0 || d.ClassID >= len(labels) {
			continue
		}
		name := labels[d.ClassID]
		if name == BackgroundLabel || name == PlaceholderLabel {
			continue
		}
		objects = append(objects, models.RecognizedObject{
			Name:       name,
			Confidence: d.Score,
		})
	}
	return objects
}

// postprocess applies the full result pipeline: threshold filter, truncation
// to the top maxObjects by score, then label resolution. Truncation happens
// before label filtering, so fewer than maxObjects entries may come back even
// when more labeled detections passed the threshold.
func postprocess(dets []rawDetection, labels []string, threshold float64, maxObjects int) []models.RecognizedObject {
	return mapLabels(topByScore(filterByScore(dets, threshold), maxObjects), labels)
}
