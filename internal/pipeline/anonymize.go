package pipeline

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"

	"optilink/internal"
)

// Word pool for generated shop aliases. Order matters: alias picks are
// positional draws from a seeded RNG.
var opticalWords = []string{
	"Bright", "Clear", "Crystal", "Diamond", "Elite", "Golden", "Grand", "Happy",
	"Perfect", "Prime", "Pure", "Royal", "Sharp", "Smart", "Sunny", "Supreme",
	"Ultra", "Vision", "Vivid", "Wonder", "Alpha", "Beta", "Gamma", "Delta",
	"Omega", "Apex", "Peak", "Summit", "Star", "Nova", "Cosmic", "Stellar",
	"Radiant", "Brilliant", "Luminous", "Glowing", "Shining", "Gleaming",
	"Sparkling", "Dazzling", "Magnificent", "Excellent", "Superior", "Premium",
	"Luxury", "Elegant", "Refined", "Sophisticated", "Advanced", "Modern",
	"Future", "Next", "Pro", "Master", "Expert", "Precision", "Focus",
	"Clarity", "Insight", "Panorama", "Spectrum", "Rainbow", "Prism",
	"Lens", "Zoom", "Wide", "Macro", "Micro", "Mega", "Super", "Hyper",
	"Turbo", "Speed", "Quick", "Swift", "Rapid", "Fast", "Instant",
	"Magic", "Dream", "Fantasy", "Miracle", "Amazing", "Awesome",
	"Fantastic", "Incredible", "Marvelous", "Spectacular", "Stunning",
	"Beautiful", "Gorgeous", "Stylish", "Chic", "Trendy", "Fashion",
	"Creative", "Unique", "Special", "Exclusive", "Limited", "Rare", "Quality",
}

// seedFor derives a stable RNG seed from an identifier. FNV-1a keeps alias
// assignment identical across processes and platforms, unlike runtime string
// hashes.
func seedFor(id string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

// GenerateAliases assigns each business ID a deterministic "<Word> Optical"
// alias. IDs are handled in sorted order; collisions retry on the same
// per-business RNG and fall back to a numbered alias after 100 attempts.
func GenerateAliases(businessIDs []string) []internal.AliasMapping {
	ids := append([]string(nil), businessIDs...)
	sort.Strings(ids)

	used := map[string]struct{}{}
	out := make([]internal.AliasMapping, 0, len(ids))
	for i, id := range ids {
		rng := rand.New(rand.NewSource(seedFor(id)))

		alias := ""
		for attempt := 0; attempt < 100; attempt++ {
			word := opticalWords[rng.Intn(len(opticalWords))]
			candidate := word + " Optical"
			if _, taken := used[candidate]; !taken {
				alias = candidate
				break
			}
			alias = fmt.Sprintf("%s Optical %d", word, i+1)
		}

		used[alias] = struct{}{}
		out = append(out, internal.AliasMapping{BusinessID: id, OpticalName: alias})
	}

	return out
}

// FillMissingBusinessIDs deterministically assigns business IDs to emails that
// the matcher left unlinked. Unused IDs are consumed first in a seeded shuffle
// order; once exhausted, assignment falls back to draws from the full pool.
// Email order is the caller's stable row order.
func FillMissingBusinessIDs(emailIDs []int, available, used []string) map[int]string {
	usedSet := map[string]struct{}{}
	for _, id := range used {
		usedSet[id] = struct{}{}
	}

	unused := make([]string, 0, len(available))
	for _, id := range available {
		if _, ok := usedSet[id]; !ok {
			unused = append(unused, id)
		}
	}
	sort.Strings(unused)

	rng := rand.New(rand.NewSource(seedFor("optilink.backfill")))
	rng.Shuffle(len(unused), func(i, j int) { unused[i], unused[j] = unused[j], unused[i] })

	out := make(map[int]string, len(emailIDs))
	next := 0
	for _, emailID := range emailIDs {
		if next < len(unused) {
			out[emailID] = unused[next]
			next++
			continue
		}
		if len(available) == 0 {
			break
		}
		out[emailID] = available[rng.Intn(len(available))]
	}
	return out
}
