// Package dedupe implements the duplicate detection engine: weighted
// multi-field similarity scoring over provider records, threshold-based
// duplicate pairing, merge candidate recommendation, and report building.
package dedupe

import (
	"fmt"
	"strings"
)

// Record is a loosely-typed provider record. Absent fields read as empty
// strings; non-string values are coerced. No field access ever fails.
type Record map[string]any

// Field reads a record field as a string, defaulting to empty when the
// field is absent or nil. This is the single defaulting policy used by
// every comparison site.
func Field(r Record, name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// StringSimilarity scores two strings in [0,1]. The engine is built around
// token-set similarity but the strategy is swappable without touching the
// field-weighting logic.
type StringSimilarity func(s1, s2 string) float64

// TokenSetSimilarity computes the Jaccard index over whitespace-delimited,
// lower-cased token sets. It tolerates word reordering but is insensitive
// to single-character typos within a token.
func TokenSetSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}
	if s1 == s2 {
		return 1.0
	}

	tokens1 := tokenSet(s1)
	tokens2 := tokenSet(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range tokens1 {
		if _, ok := tokens2[t]; ok {
			intersection++
		}
	}
	union := len(tokens1) + len(tokens2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// Field weights reflect discriminating power: NPI is a near-unique
// identifier, specialty is shared by many providers.
const (
	weightNPI       = 0.30
	weightName      = 0.25
	weightPhone     = 0.15
	weightAddress   = 0.15
	weightLicense   = 0.10
	weightSpecialty = 0.05
)

// SimilarityThreshold is the minimum score for a pair to be flagged as a
// potential duplicate.
const SimilarityThreshold = 0.75

// specialtyGroups are clinically related specialties that score a partial
// match when they fall in the same group.
var specialtyGroups = [][]string{
	{"internal medicine", "family medicine", "primary care"},
	{"cardiology", "cardiovascular", "heart"},
	{"orthopedic", "orthopedics", "orthopedic surgery"},
	{"psychiatry", "psychology", "mental health"},
	{"pediatrics", "pediatric", "child health"},
}

// Scorer computes weighted similarity between two provider records.
type Scorer struct {
	similarity StringSimilarity
}

// NewScorer returns a scorer backed by token-set similarity.
func NewScorer() *Scorer {
	return &Scorer{similarity: TokenSetSimilarity}
}

// NewScorerWithSimilarity returns a scorer with a custom string metric.
func NewScorerWithSimilarity(sim StringSimilarity) *Scorer {
	return &Scorer{similarity: sim}
}

// Score computes the weighted similarity between two records in [0,1].
// Empty fields on either side contribute zero for NPI, phone, and license;
// name, address, and specialty always contribute their sub-score.
func (s *Scorer) Score(a, b Record) float64 {
	total := 0.0

	// NPI: exact match only
	npi1 := strings.TrimSpace(Field(a, "npi"))
	npi2 := strings.TrimSpace(Field(b, "npi"))
	if npi1 != "" && npi2 != "" {
		if npi1 == npi2 {
			total += weightNPI
		}
	}

	// Name: fuzzy
	name1 := strings.ToLower(strings.TrimSpace(Field(a, "first_name") + " " + Field(a, "last_name")))
	name2 := strings.ToLower(strings.TrimSpace(Field(b, "first_name") + " " + Field(b, "last_name")))
	total += s.similarity(name1, name2) * weightName

	// Phone: normalized digits, exact first then fuzzy
	phone1 := NormalizePhone(Field(a, "phone"))
	phone2 := NormalizePhone(Field(b, "phone"))
	if phone1 != "" && phone2 != "" {
		if phone1 == phone2 {
			total += weightPhone
		} else {
			total += s.similarity(phone1, phone2) * weightPhone
		}
	}

	// Address: fuzzy over the normalized full address
	total += s.similarity(normalizeAddress(a), normalizeAddress(b)) * weightAddress

	// License: exact case-insensitive first, then fuzzy
	lic1 := strings.ToUpper(strings.TrimSpace(Field(a, "license_number")))
	lic2 := strings.ToUpper(strings.TrimSpace(Field(b, "license_number")))
	if lic1 != "" && lic2 != "" {
		if lic1 == lic2 {
			total += weightLicense
		} else {
			total += s.similarity(lic1, lic2) * weightLicense
		}
	}

	// Specialty: exact, related group, or nothing
	spec1 := strings.ToLower(strings.TrimSpace(Field(a, "specialty")))
	spec2 := strings.ToLower(strings.TrimSpace(Field(b, "specialty")))
	switch {
	case spec1 == spec2:
		total += weightSpecialty
	case specialtiesRelated(spec1, spec2):
		total += 0.5 * weightSpecialty
	}

	return total
}

// NormalizePhone strips non-digits, drops a leading US country code, and
// keeps the last ten digits.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) == 11 && strings.HasPrefix(d, "1") {
		d = d[1:]
	}
	if len(d) >= 10 {
		return d[len(d)-10:]
	}
	return d
}

// normalizeAddress joins address parts lower-cased with common street
// suffixes folded to their abbreviations.
func normalizeAddress(r Record) string {
	parts := []string{
		Field(r, "address"),
		Field(r, "city"),
		Field(r, "state"),
		zip5(Field(r, "zip_code")),
	}

	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			kept = append(kept, p)
		}
	}

	normalized := strings.Join(kept, " ")
	replacer := strings.NewReplacer(
		"street", "st",
		"avenue", "ave",
		"boulevard", "blvd",
		"drive", "dr",
	)
	return replacer.Replace(normalized)
}

func zip5(zip string) string {
	if len(zip) > 5 {
		return zip[:5]
	}
	return zip
}

// formatAddress renders the display address for a pair projection.
func formatAddress(r Record) string {
	return fmt.Sprintf("%s, %s, %s %s",
		Field(r, "address"), Field(r, "city"), Field(r, "state"), Field(r, "zip_code"))
}

// specialtiesRelated reports whether both specialties fall in the same
// clinical-relatedness group.
func specialtiesRelated(spec1, spec2 string) bool {
	if spec1 == "" || spec2 == "" {
		return false
	}
	for _, group := range specialtyGroups {
		if containsAny(spec1, group) && containsAny(spec2, group) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
