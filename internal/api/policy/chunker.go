package policy

import "strings"

// ChunkText splits text into overlapping chunks of roughly chunkSize bytes.
// When the window lands mid-sentence and the last period falls in the final
// 30% of the window, the chunk snaps back to that sentence boundary. The
// next chunk starts overlap bytes before the previous one ended.
func ChunkText(text string, chunkSize, overlap int) []string {
	if text == "" || chunkSize <= 0 {
		return nil
	}
	if overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}
		chunk := text[start:sliceEnd]

		if end < len(text) {
			if lastPeriod := strings.LastIndex(chunk, "."); lastPeriod > int(float64(chunkSize)*0.7) {
				end = start + lastPeriod + 1
				chunk = text[start:end]
			}
		}

		chunks = append(chunks, strings.TrimSpace(chunk))
		start = end - overlap
	}

	return chunks
}
