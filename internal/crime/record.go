package crime

import (
	"time"
)

// Column names expected in the source table, matching the published dataset
// header. The projection step selects exactly these, in this order.
const (
	ColCaseNumber          = "Case Number"
	ColDate                = "Date"
	ColBlock               = "Block"
	ColPrimaryType         = "Primary Type"
	ColDescription         = "Description"
	ColLocationDescription = "Location Description"
	ColArrest              = "Arrest"
	ColDistrict            = "District"
	ColLatitude            = "Latitude"
	ColLongitude           = "Longitude"
)

// RequiredColumns is the ordered column subset the pipeline keeps.
func RequiredColumns() []string {
	return []string{
		ColCaseNumber,
		ColDate,
		ColBlock,
		ColPrimaryType,
		ColDescription,
		ColLocationDescription,
		ColArrest,
		ColDistrict,
		ColLatitude,
		ColLongitude,
	}
}

// Record is one cleaned crime record with its derived temporal fields.
// Case numbers are not unique: a multi-victim incident appears as one record
// per victim sharing a case number, and counts are per record unless a
// consumer asks for distinct cases.
type Record struct {
	CaseNumber          string
	Block               string
	PrimaryType         string
	Description         string
	LocationDescription string
	Arrest              bool
	District            string
	Latitude            float64
	Longitude           float64

	// Derived once by Derive and never mutated afterward.
	Timestamp time.Time
	EventDate time.Time
	Weekday   string
	HourOfDay int
	Day       int
	Month     int
	Year      int
}

// Weekdays is the fixed Monday-first enumeration used for ordering
// day-of-week tables and the weekday axis of cross-tabs. Names are English,
// from time.Weekday; the display locale is deliberately not configurable so
// downstream ordering always matches.
func Weekdays() []string {
	return []string{
		time.Monday.String(),
		time.Tuesday.String(),
		time.Wednesday.String(),
		time.Thursday.String(),
		time.Friday.String(),
		time.Saturday.String(),
		time.Sunday.String(),
	}
}
