// Package similarity scores how alike two listings of the same brand and
// model are, by description text and by image set.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFeatures caps the per-group vocabulary.
const DefaultMaxFeatures = 1000

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// CleanText lowercases s, replaces punctuation with spaces and collapses whitespace.
func CleanText(s string) string {
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// tokenize splits cleaned text into terms of at least two characters.
func tokenize(cleaned string) []string {
	fields := strings.Fields(cleaned)
	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// sparseVector maps a vocabulary index to its weight.
type sparseVector map[int]float64

func (v sparseVector) dot(o sparseVector) float64 {
	if len(o) < len(v) {
		v, o = o, v
	}
	var sum float64
	for idx, w := range v {
		sum += w * o[idx]
	}
	return sum
}

// Matrix is a dense symmetric similarity matrix.
type Matrix struct {
	n    int
	data []float64
}

// Size returns the number of rows.
func (m Matrix) Size() int {
	return m.n
}

// At returns the similarity between documents i and j.
func (m Matrix) At(i, j int) float64 {
	return m.data[i*m.n+j]
}

// tfidf fits a term-frequency/inverse-document-frequency space over docs and
// returns their L2-normalized vectors. The vocabulary keeps the maxFeatures
// terms with the highest corpus frequency; idf is smoothed as
// ln((1+n)/(1+df))+1.
func tfidf(docs []string, maxFeatures int) []sparseVector {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	counts := make([]map[string]int, len(docs))
	corpusFreq := map[string]int{}
	docFreq := map[string]int{}
	for i, doc := range docs {
		counts[i] = map[string]int{}
		for _, term := range tokenize(CleanText(doc)) {
			counts[i][term]++
			corpusFreq[term]++
		}
		for term := range counts[i] {
			docFreq[term]++
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if corpusFreq[terms[a]] != corpusFreq[terms[b]] {
			return corpusFreq[terms[a]] > corpusFreq[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	n := float64(len(docs))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]sparseVector, len(docs))
	for i := range docs {
		vec := sparseVector{}
		var norm float64
		for term, count := range counts[i] {
			idx, ok := vocab[term]
			if !ok {
				continue
			}
			w := float64(count) * idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// TextMatrix returns pairwise cosine similarity of docs in a TF-IDF space
// fitted on docs alone. Values are clamped to [0,1]; an empty document is
// 0-similar to everything, itself included.
func TextMatrix(docs []string, maxFeatures int) Matrix {
	vectors := tfidf(docs, maxFeatures)
	n := len(docs)
	m := Matrix{n: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := clamp01(vectors[i].dot(vectors[j]))
			m.data[i*n+j] = s
			m.data[j*n+i] = s
		}
	}
	return m
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
