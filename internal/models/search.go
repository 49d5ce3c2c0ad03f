package models

// ScoredVerse is a verse with a similarity score from semantic search.
type ScoredVerse struct {
	VerseID int64   `json:"verse_id"`
	Book    string  `json:"book"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// BookGroup aggregates keyword search hits within one book.
type BookGroup struct {
	Book         Book    `json:"book"`
	VerseCount   int     `json:"verse_count"`
	SampleVerses []Verse `json:"sample_verses"`
}

// GroupedSearchResult is the cached payload for grouped keyword search.
type GroupedSearchResult struct {
	Query       string      `json:"query"`
	BookGroups  []BookGroup `json:"book_groups"`
	TotalBooks  int         `json:"total_books"`
	TotalVerses int         `json:"total_verses"`
}

// SemanticSearchRequest is the request for semantic verse search.
type SemanticSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// SemanticSearchResponse is the response for semantic verse search.
type SemanticSearchResponse struct {
	Query   string        `json:"query"`
	Results []ScoredVerse `json:"results"`
}
