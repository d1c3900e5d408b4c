package textsim

import "math"

const (
	jaccardWeight = 0.4
	cosineWeight  = 0.6
)

// Profile is the precomputed key-term view of one text. Building it once per
// cached idea keeps bucket scans from re-tokenizing stored entries.
type Profile struct {
	terms map[string]int
	sumSq float64
}

// NewProfile builds the term-frequency profile of text.
func NewProfile(text string) Profile {
	terms := make(map[string]int)
	for _, term := range keyTermList(text) {
		terms[term]++
	}

	var sumSq float64
	for _, n := range terms {
		sumSq += float64(n * n)
	}

	return Profile{terms: terms, sumSq: sumSq}
}

// Empty reports whether the profile has no key terms.
func (p Profile) Empty() bool {
	return len(p.terms) == 0
}

// Jaccard returns |A∩B| / |A∪B| over the key-term sets of a and b.
func Jaccard(a, b string) float64 {
	return JaccardProfiles(NewProfile(a), NewProfile(b))
}

// Cosine returns the cosine of the key-term frequency vectors of a and b.
func Cosine(a, b string) float64 {
	return CosineProfiles(NewProfile(a), NewProfile(b))
}

// Combined returns 0.4*Jaccard + 0.6*Cosine. It is symmetric.
func Combined(a, b string) float64 {
	return CombinedProfiles(NewProfile(a), NewProfile(b))
}

// IsSimilarEnough reports whether Combined(a, b) reaches threshold.
func IsSimilarEnough(a, b string, threshold float64) bool {
	return Combined(a, b) >= threshold
}

// JaccardProfiles is Jaccard over precomputed profiles.
func JaccardProfiles(a, b Profile) float64 {
	if score, done := emptyCase(a, b); done {
		return score
	}

	small, large := a.terms, b.terms
	if len(small) > len(large) {
		small, large = large, small
	}

	shared := 0
	for term := range small {
		if _, ok := large[term]; ok {
			shared++
		}
	}

	union := len(a.terms) + len(b.terms) - shared
	return float64(shared) / float64(union)
}

// CosineProfiles is Cosine over precomputed profiles.
func CosineProfiles(a, b Profile) float64 {
	if score, done := emptyCase(a, b); done {
		return score
	}

	small, large := a.terms, b.terms
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for term, n := range small {
		dot += float64(n * large[term])
	}

	// Squares are integral, so identical profiles divide to exactly 1.
	return math.Min(dot/math.Sqrt(a.sumSq*b.sumSq), 1.0)
}

// CombinedProfiles is Combined over precomputed profiles.
func CombinedProfiles(a, b Profile) float64 {
	return jaccardWeight*JaccardProfiles(a, b) + cosineWeight*CosineProfiles(a, b)
}

func emptyCase(a, b Profile) (float64, bool) {
	switch {
	case a.Empty() && b.Empty():
		return 1.0, true
	case a.Empty() || b.Empty():
		return 0.0, true
	default:
		return 0, false
	}
}
