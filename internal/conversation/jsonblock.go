package conversation

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONBlock reports that no parseable JSON object was found.
var ErrNoJSONBlock = errors.New("conversation: no json block found")

// ExtractJSONBlock locates the first '{' and the last '}' in text,
// slices between them inclusively, and unmarshals the slice into v.
// This is a best-effort heuristic with a single parse attempt: models
// wrap their JSON in prose, and slicing on the outermost braces is
// usually enough. The slice is not guaranteed to be balanced when the
// text contains multiple objects, in which case the parse fails and
// the caller falls back to its default.
func ExtractJSONBlock(text string, v any) error {
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx < 0 || endIdx <= startIdx {
		return ErrNoJSONBlock
	}
	if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), v); err != nil {
		return ErrNoJSONBlock
	}
	return nil
}
