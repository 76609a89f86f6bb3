package util

import (
	"regexp"
	"strings"
)

var (
	reNonAlnum    = regexp.MustCompile(`[^a-z0-9\s]`)
	reSpaces      = regexp.MustCompile(`\s+`)
	reAccountTag  = regexp.MustCompile(`\s*#\d+[A-Za-z]*$`)
	reEmailDomain = regexp.MustCompile(`@(.+)$`)
)

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// Industry synonyms and written numbers, applied in order with word boundaries
// so "eleven" is rewritten before "one" could ever touch it.
var nameReplacements = buildReplacements([][2]string{
	{"optical", "opt"},
	{"optometry", "opt"},
	{"eyecare", "eye"},
	{"eyewear", "eye"},
	{"vision", "vis"},
	{"lens", "len"},
	{"clinic", "cl"},
	{"center", "ctr"},
	{"associates", "assoc"},
	{"professional", "prof"},
	{"family", "fam"},
	{"group", "grp"},
	{"company", "co"},
	{"corporation", "corp"},
	{"incorporated", "inc"},
	{"limited", "ltd"},
	{"eleven", "11"},
	{"twenty", "20"},
	{"thirty", "30"},
	{"forty", "40"},
	{"fifty", "50"},
	{"sixty", "60"},
	{"seventy", "70"},
	{"eighty", "80"},
	{"ninety", "90"},
	{"one", "1"},
	{"two", "2"},
	{"three", "3"},
	{"four", "4"},
	{"five", "5"},
	{"six", "6"},
	{"seven", "7"},
	{"eight", "8"},
	{"nine", "9"},
	{"zero", "0"},
})

func buildReplacements(pairs [][2]string) []replacement {
	out := make([]replacement, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, replacement{
			pattern: regexp.MustCompile(`\b` + p[0] + `\b`),
			with:    p[1],
		})
	}
	return out
}

// NormalizeBusinessName produces the comparison form of a business or customer
// name: lowercased, synonyms and written numbers substituted, punctuation
// stripped, whitespace collapsed. Always returns a string, never nil semantics.
func NormalizeBusinessName(name string) string {
	s := strings.ToLower(name)
	for _, r := range nameReplacements {
		s = r.pattern.ReplaceAllString(s, r.with)
	}
	s = reNonAlnum.ReplaceAllString(s, "")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CleanCustomerName strips a trailing embedded account tag such as "#1341A"
// from a free-text customer name.
func CleanCustomerName(name string) string {
	return strings.TrimSpace(reAccountTag.ReplaceAllString(name, ""))
}

// ExtractEmailDomain returns the part of an address after '@', or "" when the
// input carries no domain.
func ExtractEmailDomain(address string) string {
	match := reEmailDomain.FindStringSubmatch(strings.TrimSpace(address))
	if match == nil {
		return ""
	}
	return match[1]
}

// SequenceRatio computes the matching-blocks similarity of two strings in
// [0,1]: twice the total length of the longest matching blocks divided by the
// combined length. Two empty strings compare as 1.
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	lensum := len(ra) + len(rb)
	if lensum == 0 {
		return 1
	}

	b2j := map[rune][]int{}
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matches := 0
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(ra), 0, len(rb)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(ra, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		matches += size
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + size, s.ahi, j + size, s.bhi},
		)
	}

	return float64(2*matches) / float64(lensum)
}

func longestMatch(ra []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range b2j[ra[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
