package models

// SyncProgress is a point-in-time snapshot of a sync run. Consumers should
// keep the latest snapshot rather than treating snapshots as deltas.
type SyncProgress struct {
	Total           int64 `json:"total"`
	Downloaded      int64 `json:"downloaded"`
	Skipped         int64 `json:"skipped"`
	TotalBytes      int64 `json:"total_bytes"`
	DownloadedBytes int64 `json:"downloaded_bytes"`
	SkippedBytes    int64 `json:"skipped_bytes"`
}

func (p SyncProgress) Processed() int64 {
	return p.Downloaded + p.Skipped
}

func (p SyncProgress) Remaining() int64 {
	return max(0, p.Total-p.Processed())
}

// Percent is in the range [0,100]; zero when Total is zero.
func (p SyncProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return min(100, float64(p.Processed())/float64(p.Total)*100)
}

func (p SyncProgress) RemainingBytes() int64 {
	return max(0, p.TotalBytes-p.DownloadedBytes-p.SkippedBytes)
}

type SyncSummary struct {
	BucketName  string `json:"bucket_name"`
	Prefix      string `json:"prefix"`
	Destination string `json:"destination"`
	Downloaded  int64  `json:"downloaded"`
	Skipped     int64  `json:"skipped"`
	Total       int64  `json:"total"`
}
