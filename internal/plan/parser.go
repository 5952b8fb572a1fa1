package plan

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/summitchronicles/summit-tracker/internal/errors"
	"github.com/xuri/excelize/v2"
)

// ErrUnreadableWorkbook indicates the uploaded bytes could not be opened as
// a workbook at all. A readable workbook without any recognised sheets is
// not an error; it parses to an empty plan.
var ErrUnreadableWorkbook = errors.NewSentinel("cannot read file")

// Sheet names recognised in uploaded workbooks, matched case-insensitively.
// Unknown sheets are ignored.
const (
	strengthSheetName   = "sunith's wp"
	cardioSheetName     = "week plan"
	guidelinesSheetName = "fuel & safeguards"
)

const titleScanRows = 10

var (
	weekNumberPattern = regexp.MustCompile(`Week (\d+)`)
	monthDayPattern   = regexp.MustCompile(`^[A-Za-z]{3}-\d{2}$`)
	dayDatePatterns   = []*regexp.Regexp{
		monthDayPattern,
		regexp.MustCompile(`^[A-Za-z]{3}\s\d{1,2}$`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	}
)

// Parse reads an uploaded workbook into a ParsedPlan. Column positions are
// fixed by index, not by header lookup, so the sheets must keep their layout.
func Parse(workbook []byte) (ParsedPlan, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return ParsedPlan{}, errors.Join(ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	var parsed ParsedPlan
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return ParsedPlan{}, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}

		switch strings.ToLower(sheetName) {
		case strengthSheetName:
			parseStrengthSheet(rows, &parsed)
		case cardioSheetName:
			parseCardioSheet(rows, &parsed)
		case guidelinesSheetName:
			parseGuidelinesSheet(rows, &parsed)
		}
	}

	return parsed, nil
}

func parseStrengthSheet(rows [][]string, parsed *ParsedPlan) {
	// The title lives somewhere in the first few rows of column B, either a
	// "... Workout Plan" heading or a "Week N: ..." heading.
	for i := 0; i < min(titleScanRows, len(rows)); i++ {
		value := cell(rows[i], 1)
		if strings.Contains(value, "Workout Plan") {
			parsed.Title = value
		} else if strings.Contains(value, "Week") && strings.Contains(value, ":") {
			parsed.Title = value
			if match := weekNumberPattern.FindStringSubmatch(value); match != nil {
				week, err := strconv.Atoi(match[1])
				if err == nil {
					parsed.WeekNumber = &week
				}
			}
		}
	}

	year := time.Now().Year()

	// Exercise rows accumulate under the most recently opened day header.
	// A day without exercises is dropped.
	var currentDay *ParsedStrengthDay
	for _, row := range rows {
		date := cell(row, 1)
		dayName := cell(row, 3)
		if date != "" && dayName != "" && isDayDate(date) {
			if currentDay != nil && len(currentDay.Exercises) > 0 {
				parsed.StrengthDays = append(parsed.StrengthDays, *currentDay)
			}
			currentDay = &ParsedStrengthDay{
				Date:        resolveDayDate(date, year),
				DayName:     dayName,
				SessionType: cell(row, 5),
			}
			continue
		}

		sequence, isNumeric := cellNumber(row, 4)
		name := cell(row, 5)
		if currentDay != nil && isNumeric && name != "" {
			currentDay.Exercises = append(currentDay.Exercises, ParsedExercise{
				Sequence:    int(sequence),
				Name:        name,
				PlannedSets: cellInt(row, 6),
				PlannedReps: cell(row, 7),
				PlannedRPE:  cellRPE(row, 8),
				Remarks:     optional(cell(row, 9)),
			})
		}
	}
	if currentDay != nil && len(currentDay.Exercises) > 0 {
		parsed.StrengthDays = append(parsed.StrengthDays, *currentDay)
	}
}

func parseCardioSheet(rows [][]string, parsed *ParsedPlan) {
	// First row is the header.
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		day := ParsedCardioDay{
			DayName:         cell(row, 0),
			SessionType:     cell(row, 1),
			PlannedDuration: cell(row, 2),
			PlannedDistance: cell(row, 3),
			PaceTarget:      cell(row, 4),
			HRTarget:        cell(row, 5),
			CadenceCue:      cell(row, 6),
			Warmup:          cell(row, 7),
			MainSet:         cell(row, 8),
			Cooldown:        cell(row, 9),
			Notes:           cell(row, 10),
		}
		if day.DayName != "" && day.SessionType != "" {
			parsed.CardioDays = append(parsed.CardioDays, day)
		}
	}
}

func parseGuidelinesSheet(rows [][]string, parsed *ParsedPlan) {
	for i := 1; i < len(rows); i++ {
		guideline := ParsedGuideline{
			Topic:     cell(rows[i], 0),
			Guideline: cell(rows[i], 1),
		}
		if guideline.Topic != "" && guideline.Guideline != "" {
			parsed.Guidelines = append(parsed.Guidelines, guideline)
		}
	}
}

// isDayDate reports whether a cell looks like one of the date spellings the
// sheets use: "Sep-08", "Sep 8" or "2024-09-08".
func isDayDate(value string) bool {
	for _, pattern := range dayDatePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// resolveDayDate converts a "Sep-08" style date to ISO using the current
// calendar year, since the sheet carries no year. Other spellings pass
// through unchanged. A plan parsed in a different year than it was written
// for will be mis-dated; the source format gives nothing better to go on.
func resolveDayDate(value string, year int) string {
	if !monthDayPattern.MatchString(value) {
		return value
	}
	parts := strings.SplitN(value, "-", 2)
	month := monthNumber(parts[0])
	if month == 0 {
		return value
	}
	return fmt.Sprintf("%d-%02d-%s", year, month, parts[1])
}

func monthNumber(abbr string) time.Month {
	for month := time.January; month <= time.December; month++ {
		if strings.EqualFold(month.String()[:3], abbr) {
			return month
		}
	}
	return 0
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellNumber(row []string, i int) (float64, bool) {
	value, err := strconv.ParseFloat(cell(row, i), 64)
	return value, err == nil
}

func cellInt(row []string, i int) *int {
	value, ok := cellNumber(row, i)
	if !ok {
		return nil
	}
	n := int(value)
	return &n
}

// cellRPE parses a planned RPE cell, keeping the low bound of a range like
// "7-8".
func cellRPE(row []string, i int) *float64 {
	raw := cell(row, i)
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return &value
	}
	if strings.Contains(raw, "-") {
		low, err := strconv.ParseFloat(strings.TrimSpace(strings.SplitN(raw, "-", 2)[0]), 64)
		if err == nil {
			return &low
		}
	}
	return nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
