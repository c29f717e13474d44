// Package aggregate computes the grouped summary tables the report is built
// from. Counts are per record: a multi-victim incident contributes one count
// per victim row. DistinctCases exists for the per-incident view.
package aggregate

import (
	"sort"
	"strconv"

	"crimelens/internal/crime"
	apperrors "crimelens/internal/errors"
)

// Group is one (key-tuple, count) pair of a grouped aggregation.
type Group struct {
	Key   []string
	Count int
}

// Options refines a grouped count. MinCount keeps only groups at or above
// the threshold; TopN keeps the N largest groups. Zero values disable both.
type Options struct {
	MinCount int
	TopN     int
}

// Predicate restricts an aggregation to matching records.
type Predicate func(crime.Record) bool

// Arrested matches records that led to an arrest.
func Arrested(r crime.Record) bool { return r.Arrest }

// OfPrimaryType matches records of one primary classification.
func OfPrimaryType(primaryType string) Predicate {
	return func(r crime.Record) bool { return r.PrimaryType == primaryType }
}

// CountBy groups records by the named key columns and counts rows per group.
// Groups come back ordered descending by count; ties are broken ascending
// lexicographic by key tuple, so the result never depends on map iteration
// order. Over a full partition the group counts sum to len(records).
func CountBy(records []crime.Record, keys []string, opts Options) ([]Group, error) {
	return CountWhere(records, nil, keys, opts)
}

// CountWhere is CountBy restricted to records matching the predicate. A nil
// predicate matches everything.
func CountWhere(records []crime.Record, match Predicate, keys []string, opts Options) ([]Group, error) {
	if len(keys) == 0 {
		return nil, apperrors.NewConfigError("aggregation requires at least one grouping key", nil)
	}
	if opts.MinCount < 0 || opts.TopN < 0 {
		return nil, apperrors.NewConfigError("aggregation thresholds must not be negative", nil)
	}

	extractors := make([]Extractor, len(keys))
	for i, key := range keys {
		ex, err := ExtractorFor(key)
		if err != nil {
			return nil, err
		}
		extractors[i] = ex
	}

	counts := make(map[string]*Group)
	for _, record := range records {
		if match != nil && !match(record) {
			continue
		}
		tuple := make([]string, len(extractors))
		for i, ex := range extractors {
			tuple[i] = ex(record)
		}
		mapKey := joinKey(tuple)
		if g, ok := counts[mapKey]; ok {
			g.Count++
		} else {
			counts[mapKey] = &Group{Key: tuple, Count: 1}
		}
	}

	groups := make([]Group, 0, len(counts))
	for _, g := range counts {
		if g.Count >= opts.MinCount {
			groups = append(groups, *g)
		}
	}

	sortGroups(groups)

	if opts.TopN > 0 && len(groups) > opts.TopN {
		groups = groups[:opts.TopN]
	}

	return groups, nil
}

// DistinctCases counts the number of distinct case numbers, collapsing
// multi-victim incidents to one.
func DistinctCases(records []crime.Record) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.CaseNumber] = struct{}{}
	}
	return len(seen)
}

// sortGroups orders descending by count, ties ascending by key tuple.
func sortGroups(groups []Group) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return lessKey(groups[i].Key, groups[j].Key)
	})
}

func lessKey(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// joinKey builds a collision-free map key from a tuple by length-prefixing
// each part, so ("a","bc") never collides with ("ab","c").
func joinKey(tuple []string) string {
	key := ""
	for _, part := range tuple {
		key += strconv.Itoa(len(part)) + ":" + part + ";"
	}
	return key
}

// Extractor reads one grouping-key value off a record as a string.
type Extractor func(crime.Record) string

// ExtractorFor maps a grouping-key name onto its record field. Derived
// calendar keys use their bare names; source columns use the dataset header
// names. Unknown keys yield a ConfigError.
func ExtractorFor(key string) (Extractor, error) {
	switch key {
	case crime.ColCaseNumber:
		return func(r crime.Record) string { return r.CaseNumber }, nil
	case crime.ColBlock:
		return func(r crime.Record) string { return r.Block }, nil
	case crime.ColPrimaryType:
		return func(r crime.Record) string { return r.PrimaryType }, nil
	case crime.ColDescription:
		return func(r crime.Record) string { return r.Description }, nil
	case crime.ColLocationDescription:
		return func(r crime.Record) string { return r.LocationDescription }, nil
	case crime.ColDistrict:
		return func(r crime.Record) string { return r.District }, nil
	case "Weekday":
		return func(r crime.Record) string { return r.Weekday }, nil
	case "Hour":
		return func(r crime.Record) string { return strconv.Itoa(r.HourOfDay) }, nil
	case "Day":
		return func(r crime.Record) string { return strconv.Itoa(r.Day) }, nil
	case "Month":
		return func(r crime.Record) string { return strconv.Itoa(r.Month) }, nil
	case "Year":
		return func(r crime.Record) string { return strconv.Itoa(r.Year) }, nil
	case "Arrest":
		return func(r crime.Record) string { return strconv.FormatBool(r.Arrest) }, nil
	default:
		return nil, apperrors.NewConfigError("unknown aggregation key", nil).
			WithContext("key", key)
	}
}
