// Package label merges photo labels coming from object metadata and from the detection service.
package label

import "strings"

// MetadataKey is the object metadata entry holding comma-separated custom labels.
// Storage layers lowercase user metadata keys, so lookups compare case-insensitively.
const MetadataKey = "customLabels"

// MaxDetected is the number of labels requested from the detection service.
const MaxDetected = 10

// Merge returns custom labels followed by detected labels, dropping exact duplicates.
// First occurrence wins; comparison is case-sensitive.
func Merge(custom, detected []string) []string {
	combined := make([]string, 0, len(custom)+len(detected))
	seen := make(map[string]struct{}, len(custom)+len(detected))

	for _, group := range [][]string{custom, detected} {
		for _, l := range group {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			combined = append(combined, l)
		}
	}
	return combined
}

// ParseCustom splits a comma-separated metadata value into trimmed, non-empty labels.
func ParseCustom(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

// FromMetadata extracts custom labels from object metadata. Missing entry yields an empty list.
func FromMetadata(metadata map[string]string) []string {
	for k, v := range metadata {
		if strings.EqualFold(k, MetadataKey) {
			return ParseCustom(v)
		}
	}
	return []string{}
}

// Detected is a label returned by the detection service.
type Detected struct {
	Name       string
	Confidence float32
}

// Names returns detected label names in detection order, skipping blanks.
func Names(detected []Detected) []string {
	names := make([]string, 0, len(detected))
	for _, d := range detected {
		if d.Name != "" {
			names = append(names, d.Name)
		}
	}
	return names
}
