package models

import "time"

type BucketInfo struct {
	BucketName     string                    `json:"bucket_name"`
	Region         string                    `json:"region"`
	CreationDate   time.Time                 `json:"creation_date"`
	ObjectCount    int64                     `json:"object_count"`
	TotalSizeBytes int64                     `json:"total_size_bytes"`
	TotalSizeHuman string                    `json:"total_size_human"`
	LastModified   time.Time                 `json:"last_modified"`
	Extensions     map[string]*ExtensionStat `json:"extensions,omitempty"`
	APIEndpoint    string                    `json:"api_endpoint,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type ScanResult struct {
	BucketName     string    `json:"bucket_name"`
	Prefix         string    `json:"prefix"`
	ObjectCount    int64     `json:"object_count"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human"`
	OperationTime  string    `json:"operation_time"`
	ScanDuration   string    `json:"scan_duration"`
	Tree           *TreeNode `json:"tree,omitempty"`
}

type PrefixListing struct {
	BucketName string   `json:"bucket_name"`
	Prefix     string   `json:"prefix"`
	Prefixes   []string `json:"prefixes"`
}
