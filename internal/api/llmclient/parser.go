package llmclient

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/wanderplan/agent-service/internal/types"
)

var (
	jsonFenceRe     = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe      = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseResponse extracts a structured itinerary from raw model output.
// Models wrap JSON in prose, markdown fences or sloppy syntax, so extraction
// runs through progressively more forgiving stages:
//
//  1. parse the response as-is
//  2. parse the contents of a ```json fence
//  3. parse the contents of any ``` fence
//  4. parse the substring from the first '{' to the last '}'
//  5. repair single quotes and trailing commas, then parse
//
// The first stage that yields valid JSON wins. If none do, the error wraps
// types.ErrLLMParseFailed.
func ParseResponse(raw string) (*types.GeneratedItinerary, error) {
	if it, ok := tryDecode(raw); ok {
		return it, nil
	}

	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		if it, ok := tryDecode(m[1]); ok {
			return it, nil
		}
	}

	if m := anyFenceRe.FindStringSubmatch(raw); m != nil {
		if it, ok := tryDecode(m[1]); ok {
			return it, nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		if it, ok := tryDecode(raw[start : end+1]); ok {
			return it, nil
		}
	}

	repaired := strings.ReplaceAll(raw, "'", `"`)
	repaired = trailingCommaRe.ReplaceAllString(repaired, "$1")
	if it, ok := tryDecode(repaired); ok {
		return it, nil
	}

	return nil, types.ErrLLMParseFailed
}

func tryDecode(s string) (*types.GeneratedItinerary, bool) {
	var it types.GeneratedItinerary
	if err := json.Unmarshal([]byte(s), &it); err != nil {
		return nil, false
	}
	return &it, true
}
