package manifest

import "os"

// Statistics summarizes a set of manifest entries.
type Statistics struct {
	TotalCount       int
	CountByExtension map[string]int
	TotalByteSize    int64 // blobs present on disk only
	MissingCount     int
}

// ComputeStatistics counts entries per extension and sums the size of the
// blobs found on disk. Sizes are read now, not cached on the entries.
func (idx *Index) ComputeStatistics(entries []Entry) Statistics {
	stats := Statistics{
		TotalCount:       len(entries),
		CountByExtension: make(map[string]int),
	}

	for _, e := range entries {
		stats.CountByExtension[e.Extension]++

		p, ok := idx.ResolvePhysicalPath(e.Identifier)
		if !ok {
			stats.MissingCount++
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			idx.logger.Warn().Err(err).Object("entry", e).Msg("could not stat blob")
			stats.MissingCount++
			continue
		}
		stats.TotalByteSize += info.Size()
	}

	return stats
}
