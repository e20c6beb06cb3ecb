// Package exceldate converts between spreadsheet day serials and calendar dates.
//
// Serial 0 is 1899-12-30, the convention spreadsheets use for every date after
// 1900-02-28. Conversion is plain integer arithmetic on the proleptic Gregorian
// calendar, so the two directions are exact inverses.
package exceldate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"saltbath/model"
)

// Epoch is the date of serial 0.
var Epoch = model.Date{Year: 1899, Month: 12, Day: 30}

// MaxSerial is the last day spreadsheets can hold, 9999-12-31.
const MaxSerial = 2958465

const (
	minYear = 1899
	maxYear = 9999
)

var epochDays = daysFromCivil(Epoch.Year, Epoch.Month, Epoch.Day)

// ToCalendar converts a day serial to a calendar date.
func ToCalendar(serial int) (model.Date, error) {
	if serial < 0 {
		return model.Date{}, fmt.Errorf("serial %d is before the epoch", serial)
	}
	if serial > MaxSerial {
		return model.Date{}, fmt.Errorf("serial %d is after 9999-12-31", serial)
	}
	y, m, d := civilFromDays(serial + epochDays)
	return model.Date{Year: y, Month: m, Day: d}, nil
}

// ToSerial converts a calendar date to a day serial.
func ToSerial(d model.Date) (int, error) {
	if !Valid(d) {
		return 0, fmt.Errorf("invalid date %s", d)
	}
	n := daysFromCivil(d.Year, d.Month, d.Day) - epochDays
	if n < 0 {
		return 0, fmt.Errorf("date %s is before the epoch", d)
	}
	return n, nil
}

// Valid reports whether d names a real calendar day in the years 1899 to 9999.
func Valid(d model.Date) bool {
	if d.Year < minYear || d.Year > maxYear {
		return false
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return d.Day <= daysInMonth(d.Year, d.Month)
}

// ParseDotted parses the "YY.M.D" form written by hand in older sheets; the year is
// taken as 2000+YY.
func ParseDotted(s string) (model.Date, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return model.Date{}, fmt.Errorf("date %q is not in YY.M.D form", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return model.Date{}, fmt.Errorf("date %q is not in YY.M.D form: %w", s, err)
		}
		nums[i] = n
	}
	if nums[0] < 0 || nums[0] > 99 {
		return model.Date{}, fmt.Errorf("date %q has a year outside 00-99", s)
	}
	d := model.Date{Year: 2000 + nums[0], Month: nums[1], Day: nums[2]}
	if !Valid(d) {
		return model.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// ParseCell reads a raw date cell: an integer serial (optionally with a time
// fraction, which is dropped) or the dotted form.
func ParseCell(raw string) (model.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Date{}, fmt.Errorf("empty date cell")
	}
	switch strings.Count(s, ".") {
	case 2:
		return ParseDotted(s)
	case 1:
		whole, frac, _ := strings.Cut(s, ".")
		if _, err := strconv.ParseUint(frac, 10, 64); err != nil {
			return model.Date{}, fmt.Errorf("unrecognised date cell %q", raw)
		}
		s = whole
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("unrecognised date cell %q", raw)
	}
	return ToCalendar(n)
}

// ToTime returns midnight UTC of d.
func ToTime(d model.Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// FromTime returns the calendar date of t in its own location.
func FromTime(t time.Time) model.Date {
	y, m, d := t.Date()
	return model.Date{Year: y, Month: int(m), Day: d}
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func daysInMonth(y, m int) int {
	switch m {
	case 2:
		if isLeap(y) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// daysFromCivil counts days since 1970-01-01.
func daysFromCivil(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := m + 9
	if m > 2 {
		mp = m - 3
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func civilFromDays(z int) (int, int, int) {
	z += 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, m, d
}
