package db

// KNNScoreField names the distance yielded by a KNN query. It is appended to
// RETURN whenever explicit return fields are requested.
const KNNScoreField = "__vector_score"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	VectorField  string // defaults to "vector"
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit. Distance is the raw metric value reported by the index.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
