package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a period input cannot be understood
var ErrInvalidPeriod = errors.New("invalid period")

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// PeriodLabel formats t as a billing period label, e.g. "Juni 2024"
func PeriodLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// NormalizePeriod turns user input into a canonical period label.
// Accepted forms: "2024-06" (month input), "06/2024" and "juni 2024".
func NormalizePeriod(input string) (string, error) {
	year, month, err := ParsePeriod(input)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year), nil
}

// ParsePeriod extracts year and month from any accepted period form
func ParsePeriod(input string) (int, time.Month, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, 0, ErrInvalidPeriod
	}

	if y, m, ok := splitNumeric(s, "-", true); ok {
		return y, m, nil
	}
	if y, m, ok := splitNumeric(s, "/", false); ok {
		return y, m, nil
	}

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, input)
	}
	year, err := parseYear(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, input)
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, fields[0]) {
			return year, time.Month(i + 1), nil
		}
	}
	return 0, 0, fmt.Errorf("%w: unknown month %q", ErrInvalidPeriod, fields[0])
}

// splitNumeric parses "YYYY<sep>MM" when yearFirst, otherwise "MM<sep>YYYY"
func splitNumeric(s, sep string, yearFirst bool) (int, time.Month, bool) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, false
	}
	yearPart, monthPart := parts[0], parts[1]
	if !yearFirst {
		yearPart, monthPart = parts[1], parts[0]
	}
	year, err := parseYear(yearPart)
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, ErrInvalidPeriod
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 {
		return 0, ErrInvalidPeriod
	}
	return year, nil
}
