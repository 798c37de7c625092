package domain

import "time"

// Document represents one indexed file.
// It is the value stored in the "_files" section of the index snapshot.
type Document struct {
	// ID is the opaque identifier postings refer to. It is the snapshot map key,
	// so it is not repeated inside the serialized record.
	ID string `json:"-"`

	// Path is the canonical absolute filesystem path.
	Path string `json:"Path"`

	// Length is the number of tokens extracted at the last index time.
	Length int `json:"Length"`

	// ModifiedDate is the file modification time (UTC) at the last index time.
	ModifiedDate time.Time `json:"ModifiedDate"`
}

// DocumentScore is a single ranked query result.
type DocumentScore struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// IndexInfo holds index statistics.
type IndexInfo struct {
	DocumentCount int `json:"document_count"`
	TermCount     int `json:"term_count"`
}
