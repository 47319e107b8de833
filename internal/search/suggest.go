package search

import (
	"path"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Suggestion is a catalog entry whose name is close to a query that had no
// substring matches.
type Suggestion struct {
	Item
	Similarity float32 `json:"similarity"`
}

// DefaultMinSimilarity is the Jaro-Winkler score a name needs to be offered.
const DefaultMinSimilarity float32 = 0.75

// Suggest ranks catalog names by Jaro-Winkler similarity to query and
// returns at most limit of them, best first. Names are compared without
// their extension so "holday" can find "Holiday.mp4".
func Suggest(ix *Index, query string, limit int, minSimilarity float32) []Suggestion {
	q := Normalize(query)
	if ix == nil || q == "" || limit <= 0 {
		return nil
	}

	var out []Suggestion
	for _, it := range ix.Items() {
		name := Normalize(strings.TrimSuffix(it.Name, path.Ext(it.Name)))
		if name == "" {
			continue
		}
		score := edlib.JaroWinklerSimilarity(q, name)
		if score >= minSimilarity {
			out = append(out, Suggestion{Item: it, Similarity: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
