package engine

const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
)

var chunkTiers = []struct {
	below int64
	chunk int64
}{
	{10 * MiB, 16 * KiB},
	{100 * MiB, 64 * KiB},
	{500 * MiB, 256 * KiB},
}

const largestChunk = 1 * MiB

// SelectChunkSize returns explicit when it is positive, otherwise the read size tier for
// totalSize. A negative (unknown) total falls into the smallest tier.
func SelectChunkSize(totalSize, explicit int64) int64 {
	if explicit > 0 {
		return explicit
	}
	for _, tier := range chunkTiers {
		if totalSize < tier.below {
			return tier.chunk
		}
	}
	return largestChunk
}
