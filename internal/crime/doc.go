// Package crime holds the typed record model of the pipeline and the stages
// that produce it: the temporal feature deriver and the year range filter.
//
// # Data Flow
//
// The typical flow through this package:
//
//	cleaned Table → Derive → []Record → FilterYears → []Record
//
// Derive parses each row's raw MM/DD/YYYY hh:mm:ss AM|PM timestamp once and
// attaches the calendar and clock fields (event date, weekday, hour of day,
// day, month, year) every downstream summary uses. Derived fields are never
// mutated after that.
//
// # Weekday naming
//
// Weekday names are fixed to English Monday..Sunday via time.Weekday, and
// Weekdays returns the Monday-first ordering used for day-of-week tables.
// The naming is deliberately not locale-configurable: downstream ordering
// depends on the fixed seven-value enumeration.
package crime
