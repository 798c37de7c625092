package index

// Postings is the inverted index: term -> document ID -> term frequency.
// A term is present only while at least one document references it.
//
// A forward map (document ID -> terms) is kept alongside so removing a
// document touches only its own terms. It is derived state and is never persisted.
type Postings struct {
	terms map[string]map[string]int
	docs  map[string]map[string]struct{}
}

// NewPostings creates an empty inverted index.
func NewPostings() *Postings {
	return &Postings{
		terms: make(map[string]map[string]int),
		docs:  make(map[string]map[string]struct{}),
	}
}

// SetFrequency stores the frequency of term in a document, replacing any previous value.
// A non-positive count removes the posting.
func (p *Postings) SetFrequency(term, docID string, count int) {
	if count <= 0 {
		p.removePosting(term, docID)
		return
	}

	postings, ok := p.terms[term]
	if !ok {
		postings = make(map[string]int)
		p.terms[term] = postings
	}
	postings[docID] = count

	terms, ok := p.docs[docID]
	if !ok {
		terms = make(map[string]struct{})
		p.docs[docID] = terms
	}
	terms[term] = struct{}{}
}

// RemoveDocument deletes every posting of a document.
// Terms left without postings are dropped.
func (p *Postings) RemoveDocument(docID string) {
	for term := range p.docs[docID] {
		postings := p.terms[term]
		delete(postings, docID)
		if len(postings) == 0 {
			delete(p.terms, term)
		}
	}
	delete(p.docs, docID)
}

// TermFrequency returns the number of occurrences of term in a document, or 0.
func (p *Postings) TermFrequency(term, docID string) int {
	return p.terms[term][docID]
}

// DocumentFrequency returns the number of documents containing term, or 0.
func (p *Postings) DocumentFrequency(term string) int {
	return len(p.terms[term])
}

// Postings returns the postings of a term. The map must not be modified.
func (p *Postings) Postings(term string) map[string]int {
	return p.terms[term]
}

// TermsOf returns the number of distinct terms of a document.
func (p *Postings) TermsOf(docID string) int {
	return len(p.docs[docID])
}

// Len returns the number of distinct terms.
func (p *Postings) Len() int {
	return len(p.terms)
}

func (p *Postings) removePosting(term, docID string) {
	if postings, ok := p.terms[term]; ok {
		delete(postings, docID)
		if len(postings) == 0 {
			delete(p.terms, term)
		}
	}
	if terms, ok := p.docs[docID]; ok {
		delete(terms, term)
		if len(terms) == 0 {
			delete(p.docs, docID)
		}
	}
}
