package match

// String similarity for fuzzy catalog matching. All inputs are expected to
// be catalog-normalized already. The metric is symmetric, returns 1.0 for
// identical strings, and decreases monotonically with edit distance.

const winklerPrefixScale = 0.1

// similarity scores two normalized strings in [0,1]. The whole strings are
// compared, and so is every word pair, so a single-word raw name can still
// resolve against one word of a multi-word canonical name ("lipds" against
// "lipid profile"). Ambiguity this generosity could introduce is handled by
// the acceptance and separation thresholds, not here.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	best := jaroWinkler(a, b)
	for _, wa := range splitWords(a) {
		for _, wb := range splitWords(b) {
			if s := jaroWinkler(wa, wb); s > best {
				best = s
			}
		}
	}
	return best
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// jaroWinkler boosts the Jaro score for a shared prefix of up to four runes.
func jaroWinkler(a, b string) float64 {
	j := jaro(a, b)
	ra, rb := []rune(a), []rune(b)
	maxPrefix := 4
	if len(ra) < maxPrefix {
		maxPrefix = len(ra)
	}
	if len(rb) < maxPrefix {
		maxPrefix = len(rb)
	}
	prefix := 0
	for i := 0; i < maxPrefix; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*winklerPrefixScale*(1-j)
}

func jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	window := la
	if lb > window {
		window = lb
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)
	matches := 0
	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > lb-1 {
			hi = lb - 1
		}
		for j := lo; j <= hi; j++ {
			if bMatched[j] || ra[i] != rb[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	j := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3
}

// levenshtein is the plain edit distance, used only for tie-breaking
// equal-scoring fuzzy candidates.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
