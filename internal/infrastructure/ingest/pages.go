package ingest

import "bytes"

// pageMarkers are the object type markers a PDF uses for its page objects.
// Both spellings occur in the wild depending on the producer.
var pageMarkers = [][]byte{
	[]byte("/Type /Page"),
	[]byte("/Type/Page"),
}

// CountPages counts the page objects of a PDF by scanning for page type
// markers. The count excludes the page tree root ("/Type /Pages"). A document
// with no recognizable markers is treated as a single page so extraction
// still runs over it.
func CountPages(data []byte) int {
	count := 0
	for _, marker := range pageMarkers {
		offset := 0
		for {
			i := bytes.Index(data[offset:], marker)
			if i == -1 {
				break
			}
			pos := offset + i
			next := pos + len(marker)
			if next >= len(data) || data[next] != 's' {
				count++
			}
			offset = next
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// PageRange is a 1-based inclusive span of document pages
type PageRange struct {
	Start int
	End   int
}

// PageChunks splits a page count into ranges of at most chunkSize pages
func PageChunks(totalPages, chunkSize int) []PageRange {
	if totalPages < 1 {
		totalPages = 1
	}
	if chunkSize < 1 {
		chunkSize = totalPages
	}

	chunks := make([]PageRange, 0, (totalPages+chunkSize-1)/chunkSize)
	for start := 1; start <= totalPages; start += chunkSize {
		end := start + chunkSize - 1
		if end > totalPages {
			end = totalPages
		}
		chunks = append(chunks, PageRange{Start: start, End: end})
	}
	return chunks
}
