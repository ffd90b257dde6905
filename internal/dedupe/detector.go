package dedupe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ProviderRef is the lightweight projection of a record carried on a
// duplicate pair.
type ProviderRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NPI       string `json:"npi"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// DuplicatePair is a pair of records judged likely to represent the same
// practitioner. Immutable once produced.
type DuplicatePair struct {
	PairID            string      `json:"pair_id"`
	Provider1         ProviderRef `json:"provider_1"`
	Provider2         ProviderRef `json:"provider_2"`
	SimilarityScore   float64     `json:"similarity_score"`
	MatchingFields    []string    `json:"matching_fields"`
	Confidence        string      `json:"confidence"`
	RecommendedAction string      `json:"recommended_action"`
	DetectedAt        string      `json:"detected_at"`
}

// FieldConflict is a field-level disagreement on a merge candidate that
// needs manual reconciliation.
type FieldConflict struct {
	Field          string `json:"field"`
	Value1         string `json:"value_1"`
	Value2         string `json:"value_2"`
	Recommendation string `json:"recommendation"`
}

// MergeCandidate is a duplicate pair strong enough to warrant
// consolidating into one record.
type MergeCandidate struct {
	PairID              string          `json:"pair_id"`
	Providers           []ProviderRef   `json:"providers"`
	Similarity          float64         `json:"similarity"`
	MergeRecommendation string          `json:"merge_recommendation"`
	PrimaryRecord       string          `json:"primary_record"`
	FieldsToMerge       []FieldConflict `json:"fields_to_merge"`
	AutoMergeEligible   bool            `json:"auto_merge_eligible"`
}

// ReportSummary holds headline counts for a deduplication report.
type ReportSummary struct {
	TotalProvidersAnalyzed   int `json:"total_providers_analyzed"`
	PotentialDuplicatesFound int `json:"potential_duplicates_found"`
	MergeCandidates          int `json:"merge_candidates"`
	AutoMergeEligible        int `json:"auto_merge_eligible"`
}

// Report is the full deduplication report.
type Report struct {
	ReportTitle     string           `json:"report_title"`
	GeneratedAt     string           `json:"generated_at"`
	Summary         ReportSummary    `json:"summary"`
	ByConfidence    map[string]int   `json:"by_confidence"`
	Duplicates      []DuplicatePair  `json:"duplicates"`
	MergeCandidates []MergeCandidate `json:"merge_candidates"`
	Recommendations []string         `json:"recommendations"`
}

// Display truncation limits for the report.
const (
	maxReportDuplicates      = 50
	maxReportMergeCandidates = 20
)

// Detector finds potential duplicate providers. It holds no state across
// calls; every invocation is a pure function of its input.
type Detector struct {
	scorer *Scorer
}

// NewDetector creates a detector with the default token-set scorer.
func NewDetector() *Detector {
	return &Detector{scorer: NewScorer()}
}

// NewDetectorWithScorer creates a detector with a custom scorer.
func NewDetectorWithScorer(scorer *Scorer) *Detector {
	return &Detector{scorer: scorer}
}

// FindPotentialDuplicates compares every unordered pair of records and
// returns the pairs scoring at or above the threshold, sorted descending
// by similarity score. O(n²) comparisons; intended for small batches.
func (d *Detector) FindPotentialDuplicates(providers []Record) []DuplicatePair {
	duplicates := []DuplicatePair{}
	processed := make(map[string]struct{})

	for i := range providers {
		for j := i + 1; j < len(providers); j++ {
			p1, p2 := providers[i], providers[j]

			// Guard against duplicate provider ids in the input; redundant
			// with the i<j loop under unique-id input.
			pairKey := sortedIDKey(Field(p1, "provider_id"), Field(p2, "provider_id"))
			if _, seen := processed[pairKey]; seen {
				continue
			}

			similarity := d.scorer.Score(p1, p2)
			if similarity < SimilarityThreshold {
				continue
			}

			duplicates = append(duplicates, DuplicatePair{
				PairID:            fmt.Sprintf("DUP-%04d-%04d", i, j),
				Provider1:         projectRecord(p1),
				Provider2:         projectRecord(p2),
				SimilarityScore:   roundScore(similarity),
				MatchingFields:    matchingFields(p1, p2),
				Confidence:        confidenceLevel(similarity),
				RecommendedAction: recommendedAction(similarity),
				DetectedAt:        time.Now().Format(time.RFC3339),
			})
			processed[pairKey] = struct{}{}
		}
	}

	sort.SliceStable(duplicates, func(a, b int) bool {
		return duplicates[a].SimilarityScore > duplicates[b].SimilarityScore
	})

	return duplicates
}

// SuggestMergeCandidates restricts pairs to high-confidence duplicates
// (score >= 85) and attaches merge guidance, preserving the input order.
func (d *Detector) SuggestMergeCandidates(duplicates []DuplicatePair) []MergeCandidate {
	candidates := []MergeCandidate{}

	for _, dup := range duplicates {
		if dup.SimilarityScore < 85 {
			continue
		}

		candidates = append(candidates, MergeCandidate{
			PairID:              dup.PairID,
			Providers:           []ProviderRef{dup.Provider1, dup.Provider2},
			Similarity:          dup.SimilarityScore,
			MergeRecommendation: mergeRecommendation(dup.SimilarityScore),
			// Known limitation: the first record always survives; no
			// recency or completeness heuristic is applied.
			PrimaryRecord:     dup.Provider1.ID,
			FieldsToMerge:     identifyMergeFields(dup),
			AutoMergeEligible: dup.SimilarityScore >= 95,
		})
	}

	return candidates
}

// GenerateReport runs the full scan and builds the deduplication report.
func (d *Detector) GenerateReport(providers []Record) *Report {
	duplicates := d.FindPotentialDuplicates(providers)
	candidates := d.SuggestMergeCandidates(duplicates)

	byConfidence := make(map[string]int)
	for _, dup := range duplicates {
		byConfidence[dup.Confidence]++
	}

	autoMerge := 0
	for _, c := range candidates {
		if c.AutoMergeEligible {
			autoMerge++
		}
	}

	return &Report{
		ReportTitle: "Provider Duplicate Detection Report",
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary: ReportSummary{
			TotalProvidersAnalyzed:   len(providers),
			PotentialDuplicatesFound: len(duplicates),
			MergeCandidates:          len(candidates),
			AutoMergeEligible:        autoMerge,
		},
		ByConfidence:    byConfidence,
		Duplicates:      truncatePairs(duplicates, maxReportDuplicates),
		MergeCandidates: truncateCandidates(candidates, maxReportMergeCandidates),
		Recommendations: reportRecommendations(duplicates),
	}
}

// roundScore converts a [0,1] similarity to a percentage rounded to one
// decimal place.
func roundScore(similarity float64) float64 {
	return math.Round(similarity*1000) / 10
}

func sortedIDKey(id1, id2 string) string {
	if id1 > id2 {
		id1, id2 = id2, id1
	}
	return id1 + "|" + id2
}

func projectRecord(r Record) ProviderRef {
	return ProviderRef{
		ID:        Field(r, "provider_id"),
		Name:      strings.TrimSpace(Field(r, "first_name") + " " + Field(r, "last_name")),
		NPI:       Field(r, "npi"),
		Specialty: Field(r, "specialty"),
		Phone:     Field(r, "phone"),
		Address:   formatAddress(r),
	}
}

// matchingFields lists fields matching exactly, independent of the
// weighted score.
func matchingFields(p1, p2 Record) []string {
	matching := []string{}

	if Field(p1, "npi") == Field(p2, "npi") {
		matching = append(matching, "NPI")
	}

	name1 := strings.ToLower(Field(p1, "first_name") + " " + Field(p1, "last_name"))
	name2 := strings.ToLower(Field(p2, "first_name") + " " + Field(p2, "last_name"))
	if name1 == name2 {
		matching = append(matching, "Full Name")
	} else if strings.EqualFold(Field(p1, "last_name"), Field(p2, "last_name")) {
		matching = append(matching, "Last Name")
	}

	if NormalizePhone(Field(p1, "phone")) == NormalizePhone(Field(p2, "phone")) {
		matching = append(matching, "Phone")
	}

	if strings.EqualFold(Field(p1, "specialty"), Field(p2, "specialty")) {
		matching = append(matching, "Specialty")
	}

	if strings.EqualFold(Field(p1, "state"), Field(p2, "state")) {
		matching = append(matching, "State")
	}

	return matching
}

func confidenceLevel(similarity float64) string {
	switch {
	case similarity >= 0.95:
		return "Very High"
	case similarity >= 0.85:
		return "High"
	case similarity >= 0.75:
		return "Medium"
	default:
		return "Low"
	}
}

func recommendedAction(similarity float64) string {
	switch {
	case similarity >= 0.95:
		return "Auto-merge recommended"
	case similarity >= 0.85:
		return "Manual review and merge"
	case similarity >= 0.75:
		return "Review for potential merge"
	default:
		return "Monitor - likely different providers"
	}
}

func mergeRecommendation(score float64) string {
	switch {
	case score >= 95:
		return "These records appear to be exact duplicates. Auto-merge is recommended."
	case score >= 85:
		return "High similarity detected. Manual review recommended before merging."
	default:
		return "Moderate similarity. Careful review required to confirm duplicate status."
	}
}

func identifyMergeFields(dup DuplicatePair) []FieldConflict {
	fields := []FieldConflict{}
	p1, p2 := dup.Provider1, dup.Provider2

	if p1.Phone != p2.Phone {
		fields = append(fields, FieldConflict{
			Field:          "phone",
			Value1:         p1.Phone,
			Value2:         p2.Phone,
			Recommendation: "Keep most recently verified",
		})
	}

	if p1.Address != p2.Address {
		fields = append(fields, FieldConflict{
			Field:          "address",
			Value1:         p1.Address,
			Value2:         p2.Address,
			Recommendation: "Keep most complete address",
		})
	}

	return fields
}

func reportRecommendations(duplicates []DuplicatePair) []string {
	recommendations := []string{}

	highConfidence := 0
	autoMerge := 0
	for _, d := range duplicates {
		if d.SimilarityScore >= 85 {
			highConfidence++
		}
		if d.SimilarityScore >= 95 {
			autoMerge++
		}
	}

	if highConfidence > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Review and merge %d high-confidence duplicate pairs", highConfidence))
	}
	if autoMerge > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d pairs are eligible for automatic merging", autoMerge))
	}
	if len(duplicates) > 0 {
		recommendations = append(recommendations,
			"Implement duplicate prevention at data entry point",
			"Consider standardizing data formats to reduce false duplicates")
	}

	return recommendations
}

func truncatePairs(pairs []DuplicatePair, limit int) []DuplicatePair {
	if len(pairs) > limit {
		return pairs[:limit]
	}
	return pairs
}

func truncateCandidates(candidates []MergeCandidate, limit int) []MergeCandidate {
	if len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
