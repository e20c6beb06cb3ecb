package model

// ReportRow is the content of one acceptance report line. It carries no layout.
type ReportRow struct {
	Date           Date   `json:"date"`
	HeatNumber     string `json:"heatNumber"`
	Count          int    `json:"count"`
	CompoundLayer  string `json:"compoundLayer"`
	DiffusionDepth string `json:"diffusionDepth"`
	Labels         string `json:"labels"`
}

// DuplicateSerial lists the store rows sharing one serial inside a partition.
type DuplicateSerial struct {
	Serial int     `json:"serial"`
	Rows   []int64 `json:"rows"`
}

// IngestSummary is returned after a batch has been written.
type IngestSummary struct {
	BatchID        string       `json:"batchId"`
	Source         string       `json:"source"`
	Fingerprint    string       `json:"fingerprint"`
	Inserted       int          `json:"inserted"`
	AlreadyPresent []Identifier `json:"alreadyPresent"`
	Partitions     []int        `json:"partitions"`
}
