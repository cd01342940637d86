// Package scoring holds the pure match-scoring primitives: keyword
// tokenization, Jaccard overlap, cosine similarity, haversine distance and
// proximity decay. No side effects, no dependencies on the rest of the app.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Token splitter: anything outside lowercase alphanumerics, a fixed set of
// accented Latin characters, '#' and '+' separates tokens ("c++" and "f#"
// survive, punctuation does not).
var tokenSplit = regexp.MustCompile(`[^a-z0-9àèéìòóùüöä#+]+`)

// Tokenize lower-cases s, splits it on non-token characters and returns the
// set of tokens at least 3 runes long. Duplicates collapse; order is lost.
func Tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	if s == "" {
		return out
	}
	for _, p := range tokenSplit.Split(strings.ToLower(s), -1) {
		if len([]rune(p)) < 3 {
			continue
		}
		out[p] = struct{}{}
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TopOverlap returns the lexicographically sorted intersection of a and b,
// truncated to k entries. Used as human-readable match reasons.
func TopOverlap(a, b map[string]struct{}, k int) []string {
	var inter []string
	for t := range a {
		if _, ok := b[t]; ok {
			inter = append(inter, t)
		}
	}
	sort.Strings(inter)
	if len(inter) > k {
		inter = inter[:k]
	}
	return inter
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. Returns 0 when
// the lengths differ or either vector is all-zero. Callers that need a score
// remap the result through Remap01.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Remap01 clamps a cosine value to [-1, 1] and rescales it to [0, 1].
func Remap01(cos float64) float64 {
	cos = math.Max(-1, math.Min(1, cos))
	return (cos + 1) / 2
}

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points, or nil
// when any coordinate is missing. A nil result means "distance unknown" and
// must not be read as zero: radius filters skip it and proximity scoring
// falls back to neutral.
func HaversineKm(lat1, lon1, lat2, lon2 *float64) *float64 {
	if lat1 == nil || lon1 == nil || lat2 == nil || lon2 == nil {
		return nil
	}
	dLat := radians(*lat2 - *lat1)
	dLon := radians(*lon2 - *lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(*lat1))*math.Cos(radians(*lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	d := earthRadiusKm * c
	return &d
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// ProximityScore decays linearly from 1 at distance 0 to 0 at or beyond the
// radius. Unknown distance scores a neutral 0.5.
func ProximityScore(distanceKm *float64, radiusKm float64) float64 {
	if distanceKm == nil {
		return 0.5
	}
	x := math.Max(0, math.Min(*distanceKm/radiusKm, 1))
	return 1 - x
}

// Round rounds v half-up to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
