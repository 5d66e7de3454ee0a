// Package static provides an in-memory keyword retriever over a fixed
// document set. It serves deployments that ship their guideline corpus
// with the binary instead of running a vector database.
package static

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fairlabor/pobot/rag"
)

// Document is one corpus entry. HTML documents are converted to plain
// text at indexing time.
type Document struct {
	Source  string
	Content string
	HTML    bool
}

// Retriever scores documents by keyword overlap with the query.
type Retriever struct {
	mu   sync.RWMutex
	docs []rag.Passage
}

// New creates a retriever over the given documents.
func New(docs ...Document) (*Retriever, error) {
	r := &Retriever{}
	for _, d := range docs {
		if err := r.Index(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Index adds one document to the corpus.
func (r *Retriever) Index(doc Document) error {
	content := doc.Content
	if doc.HTML {
		text, err := rag.HTMLToText(content)
		if err != nil {
			return err
		}
		content = text
	}
	content = rag.Preprocess(content)
	if content == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, rag.Passage{Content: content, Source: doc.Source})
	return nil
}

// Len returns the number of indexed documents.
func (r *Retriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Retrieve returns the k documents sharing the most words with the query.
// Documents with no overlap at all are excluded.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]rag.Passage, error) {
	if k <= 0 {
		k = 1
	}
	terms := queryTerms(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var scored []rag.Passage
	for _, doc := range r.docs {
		score := overlap(terms, doc.Content)
		if score == 0 {
			continue
		}
		p := doc
		p.Score = score
		scored = append(scored, p)
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) < 3 {
			continue
		}
		terms[w] = struct{}{}
	}
	return terms
}

func overlap(terms map[string]struct{}, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lowered := strings.ToLower(content)
	hits := 0
	for term := range terms {
		if strings.Contains(lowered, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
