package model

import "fmt"

// Date is an inspection date as a calendar triple.
type Date struct {
	Year  int `db:"year" json:"year"`
	Month int `db:"month" json:"month"`
	Day   int `db:"day" json:"day"`
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d sorts before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// Identifier is the natural key of a part: (partition year, serial).
type Identifier struct {
	PartitionYear int `json:"partitionYear"`
	Serial        int `json:"serial"`
}

// String renders the full printed label, e.g. DL24-07698.
func (id Identifier) String() string {
	return fmt.Sprintf("DL%d-%05d", id.PartitionYear, id.Serial)
}

// Record is one inspected part. The measurement fields are kept verbatim.
type Record struct {
	Date
	HeatNumber     int    `db:"heat_number" json:"heatNumber"`
	CompoundLayer  string `db:"compound_layer" json:"compoundLayer"`
	DiffusionDepth string `db:"diffusion_depth" json:"diffusionDepth"`
	PartitionYear  int    `db:"partition_year" json:"partitionYear"`
	Serial         int    `db:"serial" json:"serial"`
}

// Identifier returns the record's natural key.
func (r Record) Identifier() Identifier {
	return Identifier{PartitionYear: r.PartitionYear, Serial: r.Serial}
}

// HeatLabel is the three digit display form of the heat number.
func (r Record) HeatLabel() string {
	return fmt.Sprintf("%03d", r.HeatNumber)
}

// SameBatch reports whether two records went through the same treatment run with
// the same results.
func (r Record) SameBatch(o Record) bool {
	return r.Date == o.Date &&
		r.HeatNumber == o.HeatNumber &&
		r.CompoundLayer == o.CompoundLayer &&
		r.DiffusionDepth == o.DiffusionDepth
}

// RecordDraft is a record as read from a spreadsheet row. A nil field was missing
// in the source.
type RecordDraft struct {
	Source         string
	Date           *Date
	HeatNumber     *int
	CompoundLayer  *string
	DiffusionDepth *string
	PartitionYear  *int
	Serial         *int
}

// Batch is a validated set of records ready for the store.
type Batch struct {
	Source  string
	Records []Record
}

// AppendOutcome reports what happened to a single append. It is AppendUnknown
// whenever the append returned an error.
type AppendOutcome int

const (
	AppendUnknown AppendOutcome = iota
	AppendInserted
	AppendAlreadyPresent
)

func (o AppendOutcome) String() string {
	switch o {
	case AppendUnknown:
		return "unknown"
	case AppendInserted:
		return "inserted"
	case AppendAlreadyPresent:
		return "already present"
	default:
		return fmt.Sprintf("AppendOutcome(%d)", int(o))
	}
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s heat=%s cl=%s dd=%s", r.Identifier(), r.Date, r.HeatLabel(), r.CompoundLayer, r.DiffusionDepth)
}
