package retrieval

// Keyword scoring weights and caps.
const (
	exactMatchWeight  = 3.0
	prefixMatchWeight = 1.5
	minPrefixLen      = 4
	freqCap           = 5
	partialCredit     = 0.7
	tieBreakDivisor   = 1000.0
	tieBreakCeiling   = 0.1
)

// chunkIndexEntry holds a chunk's precomputed token statistics.
type chunkIndexEntry struct {
	tokens []string       // distinct chunk tokens, in first-seen order
	freq   map[string]int // term frequency per distinct token
	length int            // total token count
}

// newChunkIndexEntry tokenizes chunk content once at retriever construction.
func newChunkIndexEntry(content string) chunkIndexEntry {
	tokens := Tokenize(content)
	freq := termFrequencies(tokens)
	distinct := make([]string, 0, len(freq))
	seen := make(map[string]bool, len(freq))
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			distinct = append(distinct, tok)
		}
	}
	return chunkIndexEntry{tokens: distinct, freq: freq, length: len(tokens)}
}

// freqWeight maps a term frequency into [0,1], capped at freqCap occurrences.
func freqWeight(freq int) float64 {
	if freq > freqCap {
		freq = freqCap
	}
	return float64(freq) / freqCap
}

// sharedPrefixLen returns the length of the longest common prefix of a and b.
func sharedPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// keywordScore scores one chunk against the query tokens.
//
// Exact matches earn frequency-weighted credit; a query token without an
// exact match may earn partial credit from the first chunk token sharing a
// prefix of at least minPrefixLen. The final score balances the raw
// accumulated score against the fraction of query tokens matched. Chunks with
// no match at all get a tiny length-proportional tie-break so a query with no
// lexical overlap still ranks the most substantial chunks instead of nothing.
func keywordScore(queryTokens []string, entry chunkIndexEntry) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	var raw float64
	matched := 0

	for _, qtok := range queryTokens {
		if freq := entry.freq[qtok]; freq > 0 {
			raw += exactMatchWeight * freqWeight(freq)
			matched++
			continue
		}

		// No exact match: first shared prefix of sufficient length wins,
		// no double counting.
		for _, ctok := range entry.tokens {
			shared := sharedPrefixLen(qtok, ctok)
			if shared < minPrefixLen {
				continue
			}
			raw += prefixMatchWeight * (float64(shared) / float64(len(qtok))) * freqWeight(entry.freq[ctok])
			matched++
			break
		}
	}

	if matched == 0 {
		tie := float64(entry.length) / tieBreakDivisor
		if tie > tieBreakCeiling {
			tie = tieBreakCeiling
		}
		return tie
	}

	normalized := raw / (2 * float64(len(queryTokens)))
	if normalized > 1.0 {
		normalized = 1.0
	}
	coverage := float64(matched) / float64(len(queryTokens)) * partialCredit
	if coverage > normalized {
		return coverage
	}
	return normalized
}
