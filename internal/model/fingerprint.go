package model

// Fingerprint is the deterministic content identity of a source document.
// It is an equality key only: no field participates in any fuzzy or partial
// comparison.
type Fingerprint struct {
	FileSizeBytes  int64  `json:"file_size_bytes"`
	PageCount      int    `json:"page_count"`
	ContentHash    string `json:"content_hash"` // sha256 over the first 2 MiB, hex
	SourceBasename string `json:"source_basename"`
}

// FingerprintsMatch reports whether two fingerprints are identical in all
// four fields.
func FingerprintsMatch(a, b Fingerprint) bool {
	return a.FileSizeBytes == b.FileSizeBytes &&
		a.PageCount == b.PageCount &&
		a.ContentHash == b.ContentHash &&
		a.SourceBasename == b.SourceBasename
}

// FingerprintDiff lists the fields in which two fingerprints differ, for
// gate-failure diagnostics.
func FingerprintDiff(a, b Fingerprint) []string {
	var diff []string
	if a.FileSizeBytes != b.FileSizeBytes {
		diff = append(diff, "file_size_bytes")
	}
	if a.PageCount != b.PageCount {
		diff = append(diff, "page_count")
	}
	if a.ContentHash != b.ContentHash {
		diff = append(diff, "content_hash")
	}
	if a.SourceBasename != b.SourceBasename {
		diff = append(diff, "source_basename")
	}
	return diff
}
