package domain

// ProductBatchSize is the maximum number of product ids sent in one resolution call.
const ProductBatchSize = 250

// Chunk removes duplicates from ids (first occurrence wins) and splits the result
// into consecutive chunks of at most size elements. The input slice is not modified.
// A size of zero or less yields a single chunk holding every distinct id.
func Chunk[T comparable](ids []T, size int) [][]T {
	seen := make(map[T]struct{}, len(ids))
	distinct := make([]T, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	if len(distinct) == 0 {
		return nil
	}
	if size <= 0 || size >= len(distinct) {
		return [][]T{distinct}
	}

	chunks := make([][]T, 0, (len(distinct)+size-1)/size)
	for start := 0; start < len(distinct); start += size {
		end := min(start+size, len(distinct))
		chunks = append(chunks, distinct[start:end:end])
	}
	return chunks
}
