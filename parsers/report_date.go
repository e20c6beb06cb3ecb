package parsers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"saltbath/exceldate"
	"saltbath/model"
)

// ParseReportDate reads the date typed for a report: "today", "2025 1 21" or
// "2025-01-21". now supplies the date for "today".
func ParseReportDate(raw string, now time.Time) (model.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "today") {
		return exceldate.FromTime(now), nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '.'
	})
	if len(fields) != 3 {
		return model.Date{}, fmt.Errorf("report date %q: want year month day", raw)
	}
	var parts [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return model.Date{}, fmt.Errorf("report date %q: %w", raw, err)
		}
		parts[i] = n
	}
	d := model.Date{Year: parts[0], Month: parts[1], Day: parts[2]}
	if !exceldate.Valid(d) {
		return model.Date{}, fmt.Errorf("report date %q is not a calendar date", raw)
	}
	return d, nil
}
