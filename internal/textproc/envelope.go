package textproc

import (
	"encoding/json"

	"github.com/textcore/aicore/internal/config"
)

// cachedEntry is the JSON shape stored under a cache key. It excludes
// the per-call fields (processing_time_ms, cache_hit, service_status,
// fallback_used) since those describe the invocation, not the cached
// content, and are recomputed every time the entry is read.
type cachedEntry struct {
	Result    string     `json:"result,omitempty"`
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	KeyPoints []string   `json:"key_points,omitempty"`
	Questions []string   `json:"questions,omitempty"`
	WordCount int        `json:"word_count"`
}

func (r modelResult) toCachedEntry(wordCount int) cachedEntry {
	return cachedEntry{
		Result:    r.Result,
		Sentiment: r.Sentiment,
		KeyPoints: r.KeyPoints,
		Questions: r.Questions,
		WordCount: wordCount,
	}
}

func (e cachedEntry) toResponse(op config.Operation) Response {
	return Response{
		Operation: op,
		Success:   true,
		Result:    e.Result,
		Sentiment: e.Sentiment,
		KeyPoints: e.KeyPoints,
		Questions: e.Questions,
		Metadata:  Metadata{WordCount: e.WordCount},
	}
}

func encodeCachedEntry(e cachedEntry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeCachedEntry(data []byte) (cachedEntry, error) {
	var e cachedEntry
	err := json.Unmarshal(data, &e)
	return e, err
}
