// internal/dedupe/detector_test.go
package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func duplicateBatch() []Record {
	// Two exact duplicates, one strong match, and two unrelated records.
	exact1 := fullRecord("PRV00001")
	exact2 := fullRecord("PRV00002")

	strong := createRecord("PRV00003", "1234567890", "John", "Smith",
		"555-123-4567", "450 Oak Street Suite 9", "Springfield", "IL", "62701",
		"MD22222", "Cardiology")

	unrelated1 := createRecord("PRV00004", "5550001111", "Alice", "Jones",
		"(555) 111-2222", "10 First Ave", "Austin", "TX", "73301",
		"LIC-A", "Dermatology")
	unrelated2 := createRecord("PRV00005", "5550002222", "Robert", "Brown",
		"(555) 333-4444", "99 Last Blvd", "Denver", "CO", "80201",
		"LIC-B", "Neurology")

	return []Record{exact1, exact2, strong, unrelated1, unrelated2}
}

// ==========================
// Duplicate Finder Tests
// ==========================

func TestDetector_FindPotentialDuplicates(t *testing.T) {
	detector := NewDetector()
	pairs := detector.FindPotentialDuplicates(duplicateBatch())

	require.NotEmpty(t, pairs)

	// Threshold gate: nothing below 75.0 appears.
	for _, p := range pairs {
		assert.GreaterOrEqual(t, p.SimilarityScore, 75.0)
	}

	// Ordering: non-increasing by score.
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].SimilarityScore, pairs[i].SimilarityScore)
	}

	// The exact-duplicate pair comes first with a perfect score.
	top := pairs[0]
	assert.Equal(t, 100.0, top.SimilarityScore)
	assert.Equal(t, "Very High", top.Confidence)
	assert.Equal(t, "Auto-merge recommended", top.RecommendedAction)
	assert.Equal(t, "PRV00001", top.Provider1.ID)
	assert.Equal(t, "PRV00002", top.Provider2.ID)
	assert.Contains(t, top.MatchingFields, "NPI")
	assert.Contains(t, top.MatchingFields, "Full Name")
	assert.Contains(t, top.MatchingFields, "Phone")
	assert.Contains(t, top.MatchingFields, "Specialty")
	assert.Contains(t, top.MatchingFields, "State")
}

func TestDetector_FindPotentialDuplicates_EmptyInput(t *testing.T) {
	detector := NewDetector()

	assert.Empty(t, detector.FindPotentialDuplicates(nil))
	assert.Empty(t, detector.FindPotentialDuplicates([]Record{}))
	assert.Empty(t, detector.FindPotentialDuplicates([]Record{fullRecord("PRV00001")}))
}

func TestDetector_FindPotentialDuplicates_NoDuplicates(t *testing.T) {
	detector := NewDetector()

	providers := []Record{
		createRecord("PRV00001", "1110001111", "Alice", "Jones",
			"(555) 111-2222", "10 First Ave", "Austin", "TX", "73301",
			"LIC-A", "Dermatology"),
		createRecord("PRV00002", "2220002222", "Robert", "Brown",
			"(555) 333-4444", "99 Last Blvd", "Denver", "CO", "80201",
			"LIC-B", "Neurology"),
	}

	assert.Empty(t, detector.FindPotentialDuplicates(providers))
}

func TestDetector_FindPotentialDuplicates_PairIDFormat(t *testing.T) {
	detector := NewDetector()

	providers := []Record{fullRecord("PRV00001"), fullRecord("PRV00002")}
	pairs := detector.FindPotentialDuplicates(providers)

	require.Len(t, pairs, 1)
	assert.Equal(t, "DUP-0000-0001", pairs[0].PairID)
}

func TestDetector_FindPotentialDuplicates_DuplicateIDsVisitedOnce(t *testing.T) {
	detector := NewDetector()

	// Three records sharing one provider id: the sorted-id guard keeps the
	// repeated id pair from being emitted twice.
	providers := []Record{
		fullRecord("PRV-SAME"),
		fullRecord("PRV-SAME"),
		fullRecord("PRV-SAME"),
	}

	pairs := detector.FindPotentialDuplicates(providers)
	assert.Len(t, pairs, 1)
}

func TestDetector_FindPotentialDuplicates_BareRecordNeverFlagged(t *testing.T) {
	detector := NewDetector()

	providers := []Record{
		{"provider_id": "PRV-BARE"},
		fullRecord("PRV00001"),
	}

	// Must complete without panicking and flag nothing.
	assert.Empty(t, detector.FindPotentialDuplicates(providers))
}

// ==========================
// Merge Candidate Tests
// ==========================

func TestDetector_SuggestMergeCandidates(t *testing.T) {
	detector := NewDetector()
	pairs := detector.FindPotentialDuplicates(duplicateBatch())
	candidates := detector.SuggestMergeCandidates(pairs)

	require.NotEmpty(t, candidates)

	pairByID := make(map[string]DuplicatePair)
	for _, p := range pairs {
		pairByID[p.PairID] = p
	}

	for _, c := range candidates {
		// Merge subset: each candidate maps back to a pair scoring >= 85.
		source, ok := pairByID[c.PairID]
		require.True(t, ok, "candidate %s must correspond to a duplicate pair", c.PairID)
		assert.GreaterOrEqual(t, source.SimilarityScore, 85.0)
		assert.Equal(t, source.SimilarityScore, c.Similarity)

		// Primary record policy: first record survives.
		assert.Equal(t, source.Provider1.ID, c.PrimaryRecord)

		assert.Equal(t, c.Similarity >= 95, c.AutoMergeEligible)
	}
}

func TestDetector_SuggestMergeCandidates_FieldConflicts(t *testing.T) {
	detector := NewDetector()

	a := fullRecord("PRV00001")
	b := createRecord("PRV00002", "1234567890", "John", "Smith",
		"555-123-4567", "450 Oak Street Suite 9", "Springfield", "IL", "62701",
		"MD12345", "Cardiology")

	pairs := detector.FindPotentialDuplicates([]Record{a, b})
	require.Len(t, pairs, 1)

	candidates := detector.SuggestMergeCandidates(pairs)
	require.Len(t, candidates, 1)

	fields := make(map[string]FieldConflict)
	for _, f := range candidates[0].FieldsToMerge {
		fields[f.Field] = f
	}

	// Raw phone strings differ even though they normalize identically.
	phone, ok := fields["phone"]
	require.True(t, ok)
	assert.Equal(t, "Keep most recently verified", phone.Recommendation)

	addr, ok := fields["address"]
	require.True(t, ok)
	assert.Equal(t, "Keep most complete address", addr.Recommendation)
	assert.NotEqual(t, addr.Value1, addr.Value2)
}

func TestDetector_SuggestMergeCandidates_BelowThresholdExcluded(t *testing.T) {
	detector := NewDetector()

	pairs := []DuplicatePair{
		{PairID: "DUP-0000-0001", SimilarityScore: 84.9},
		{PairID: "DUP-0000-0002", SimilarityScore: 85.0},
	}

	candidates := detector.SuggestMergeCandidates(pairs)
	require.Len(t, candidates, 1)
	assert.Equal(t, "DUP-0000-0002", candidates[0].PairID)
	assert.False(t, candidates[0].AutoMergeEligible)
}

// ==========================
// Report Builder Tests
// ==========================

func TestDetector_GenerateReport(t *testing.T) {
	detector := NewDetector()
	report := detector.GenerateReport(duplicateBatch())

	require.NotNil(t, report)
	assert.Equal(t, "Provider Duplicate Detection Report", report.ReportTitle)
	assert.NotEmpty(t, report.GeneratedAt)

	assert.Equal(t, 5, report.Summary.TotalProvidersAnalyzed)
	assert.Equal(t, len(report.Duplicates), report.Summary.PotentialDuplicatesFound)
	assert.Equal(t, len(report.MergeCandidates), report.Summary.MergeCandidates)
	assert.GreaterOrEqual(t, report.Summary.AutoMergeEligible, 1)

	totalByConfidence := 0
	for _, count := range report.ByConfidence {
		totalByConfidence += count
	}
	assert.Equal(t, report.Summary.PotentialDuplicatesFound, totalByConfidence)

	assert.Contains(t, report.Recommendations,
		"Implement duplicate prevention at data entry point")
}

func TestDetector_GenerateReport_EmptyInput(t *testing.T) {
	detector := NewDetector()
	report := detector.GenerateReport(nil)

	require.NotNil(t, report)
	assert.Equal(t, 0, report.Summary.TotalProvidersAnalyzed)
	assert.Equal(t, 0, report.Summary.PotentialDuplicatesFound)
	assert.Equal(t, 0, report.Summary.MergeCandidates)
	assert.Equal(t, 0, report.Summary.AutoMergeEligible)
	assert.Empty(t, report.Duplicates)
	assert.Empty(t, report.MergeCandidates)
	assert.Empty(t, report.Recommendations)
}

func TestDetector_GenerateReport_Truncation(t *testing.T) {
	detector := NewDetector()

	// 60 copies of the same record produce far more than 50 duplicate pairs
	// once ids are unique.
	providers := make([]Record, 0, 60)
	for i := 0; i < 60; i++ {
		r := fullRecord("")
		r["provider_id"] = "PRV" + string(rune('A'+i/26)) + string(rune('A'+i%26))
		providers = append(providers, r)
	}

	report := detector.GenerateReport(providers)
	assert.Len(t, report.Duplicates, maxReportDuplicates)
	assert.Len(t, report.MergeCandidates, maxReportMergeCandidates)
	assert.Greater(t, report.Summary.PotentialDuplicatesFound, maxReportDuplicates)
}

// ==========================
// Benchmark
// ==========================

func BenchmarkDetector_FindPotentialDuplicates(b *testing.B) {
	detector := NewDetector()

	providers := make([]Record, 0, 100)
	for i := 0; i < 100; i++ {
		r := fullRecord("")
		r["provider_id"] = "PRV" + string(rune('A'+i/26)) + string(rune('A'+i%26))
		r["npi"] = "12345" + string(rune('0'+i%10))
		providers = append(providers, r)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		detector.FindPotentialDuplicates(providers)
	}
}
