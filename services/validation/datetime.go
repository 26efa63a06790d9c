package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnparseableDate is returned when no date can be read from the input.
	ErrUnparseableDate = errors.New("unparseable date")
	// ErrDateInPast is returned for a date before today.
	ErrDateInPast = errors.New("date is in the past")
)

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	numericDate   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?\b`)
	isoDate       = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	yearPattern   = regexp.MustCompile(`^\d{4}$`)
	dayNumber     = regexp.MustCompile(`^\d{1,2}$`)
)

// ParseDate reads a move date relative to now: "today", "tomorrow",
// "day after tomorrow", "next week", weekday names, "October 25th",
// "25 Oct 2026", "10/25" and ISO dates. Dates without a year roll over to
// next year once passed. The result is midnight in now's location.
func ParseDate(text string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	lower := strings.ToLower(NormalizeString(text))
	if lower == "" {
		return time.Time{}, ErrUnparseableDate
	}

	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return today.AddDate(0, 0, 2), nil
	case strings.Contains(lower, "tomorrow"):
		return today.AddDate(0, 0, 1), nil
	case strings.Contains(lower, "today"):
		return today, nil
	case strings.Contains(lower, "next week"):
		return today.AddDate(0, 0, 7), nil
	}

	norm := ordinalSuffix.ReplaceAllString(strings.ReplaceAll(lower, ",", " "), "$1")
	tokens := tokenize(norm)

	if d, ok := parseMonthDay(tokens, today); ok {
		return checkNotPast(d, today)
	}
	if m := isoDate.FindStringSubmatch(norm); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		dd, _ := strconv.Atoi(m[3])
		d, err := buildDate(y, time.Month(mo), dd, today.Location())
		if err != nil {
			return time.Time{}, err
		}
		return checkNotPast(d, today)
	}
	if m := numericDate.FindStringSubmatch(norm); m != nil {
		mo, _ := strconv.Atoi(m[1])
		dd, _ := strconv.Atoi(m[2])
		year := today.Year()
		explicit := m[3] != ""
		if explicit {
			year, _ = strconv.Atoi(m[3])
			if len(m[3]) == 2 {
				year += 2000
			}
		}
		d, err := buildDate(year, time.Month(mo), dd, today.Location())
		if err != nil {
			return time.Time{}, err
		}
		if !explicit && d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return checkNotPast(d, today)
	}

	for _, tok := range tokens {
		if wd, ok := weekdayNames[tok]; ok {
			ahead := (int(wd) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return today.AddDate(0, 0, ahead), nil
		}
	}
	return time.Time{}, ErrUnparseableDate
}

// parseMonthDay handles "october 25 [2026]" and "25 october [2026]".
func parseMonthDay(tokens []string, today time.Time) (time.Time, bool) {
	for i, tok := range tokens {
		month, ok := monthNames[tok]
		if !ok {
			continue
		}
		day, year := 0, 0
		if i+1 < len(tokens) && dayNumber.MatchString(tokens[i+1]) {
			day, _ = strconv.Atoi(tokens[i+1])
			if i+2 < len(tokens) && yearPattern.MatchString(tokens[i+2]) {
				year, _ = strconv.Atoi(tokens[i+2])
			}
		} else if j := dayBefore(tokens, i); j >= 0 {
			day, _ = strconv.Atoi(tokens[j])
			if i+1 < len(tokens) && yearPattern.MatchString(tokens[i+1]) {
				year, _ = strconv.Atoi(tokens[i+1])
			}
		}
		if day == 0 {
			continue
		}
		explicit := year != 0
		if !explicit {
			year = today.Year()
		}
		d, err := buildDate(year, month, day, today.Location())
		if err != nil {
			return time.Time{}, false
		}
		if !explicit && d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d, true
	}
	return time.Time{}, false
}

// dayBefore finds a day number preceding the month at i, allowing "5 of november".
func dayBefore(tokens []string, i int) int {
	switch {
	case i > 0 && dayNumber.MatchString(tokens[i-1]):
		return i - 1
	case i > 1 && tokens[i-1] == "of" && dayNumber.MatchString(tokens[i-2]):
		return i - 2
	}
	return -1
}

func buildDate(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, ErrUnparseableDate
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	// time.Date normalizes Feb 30 into March; reject that.
	if d.Month() != month || d.Day() != day {
		return time.Time{}, ErrUnparseableDate
	}
	return d, nil
}

func checkNotPast(d, today time.Time) (time.Time, error) {
	if d.Before(today) {
		return time.Time{}, ErrDateInPast
	}
	return d, nil
}

// FormatSpokenDate renders a date the way it is read back: "Friday, October 23, 2026".
func FormatSpokenDate(d time.Time) string {
	return d.Format("Monday, January 2, 2006")
}

// TimePreference is a requested start time.
type TimePreference struct {
	Label string // "Morning" or "3 PM"
	Hour  int    // 24h start hour used for availability checks
}

// Hours for the named parts of the day.
const (
	MorningHour   = 8
	AfternoonHour = 13
	EveningHour   = 16
	FlexibleHour  = 10
)

var (
	clockTime = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(a\.?\s?m\.?|p\.?\s?m\.?|o'?clock)`)
	atHour    = regexp.MustCompile(`\bat (\d{1,2})(?::(\d{2}))?\b`)
	hourWords = map[string]string{
		"one": "1", "two": "2", "three": "3", "four": "4", "five": "5", "six": "6",
		"seven": "7", "eight": "8", "nine": "9", "ten": "10", "eleven": "11", "twelve": "12",
	}
)

// ParseTimePreference reads a part of the day ("morning", "afternoon",
// "evening", "flexible"/"anytime") or a clock time ("3 PM", "at 10",
// "nine o'clock", "noon").
func ParseTimePreference(text string) (TimePreference, bool) {
	lower := strings.ToLower(NormalizeString(text))
	if lower == "" {
		return TimePreference{}, false
	}

	words := strings.Fields(lower)
	for i, w := range words {
		if d, ok := hourWords[strings.Trim(w, ".,")]; ok {
			words[i] = d
		}
	}
	norm := strings.Join(words, " ")

	if m := clockTime.FindStringSubmatch(norm); m != nil {
		hour, _ := strconv.Atoi(m[1])
		suffix := strings.NewReplacer(".", "", " ", "").Replace(m[3])
		if h, ok := to24(hour, suffix); ok {
			return TimePreference{Label: hourLabel(h), Hour: h}, true
		}
	}
	if m := atHour.FindStringSubmatch(norm); m != nil {
		hour, _ := strconv.Atoi(m[1])
		if h, ok := to24(hour, ""); ok {
			return TimePreference{Label: hourLabel(h), Hour: h}, true
		}
	}

	switch {
	case strings.Contains(norm, "noon") && !strings.Contains(norm, "afternoon"):
		return TimePreference{Label: hourLabel(12), Hour: 12}, true
	case strings.Contains(norm, "morning"):
		return TimePreference{Label: "Morning", Hour: MorningHour}, true
	case strings.Contains(norm, "afternoon"):
		return TimePreference{Label: "Afternoon", Hour: AfternoonHour}, true
	case strings.Contains(norm, "evening"):
		return TimePreference{Label: "Evening", Hour: EveningHour}, true
	case containsAny(norm, "flexible", "anytime", "any time", "doesn't matter", "whenever"):
		return TimePreference{Label: "Flexible", Hour: FlexibleHour}, true
	}
	return TimePreference{}, false
}

// to24 converts a spoken hour. Without am/pm, 1-6 are read as afternoon.
func to24(hour int, suffix string) (int, bool) {
	if hour < 1 || hour > 12 {
		return 0, false
	}
	switch {
	case strings.HasPrefix(suffix, "p"):
		if hour != 12 {
			hour += 12
		}
	case strings.HasPrefix(suffix, "a"):
		if hour == 12 {
			hour = 0
		}
	default:
		if hour <= 6 {
			hour += 12
		}
	}
	return hour, true
}

// hourLabel renders a 24h hour as "9 AM" / "1 PM".
func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	}
	return fmt.Sprintf("%d PM", h-12)
}

// HourLabel is exported for callers that build slot labels.
func HourLabel(h int) string { return hourLabel(h) }
