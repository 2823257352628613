package services

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"techlympics/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const xlsxDateFormat = "02/01/2006 15:04"

var ErrMissingColumns = errors.New("required columns not found in any sheet")

// writeWorkbook builds a single sheet workbook with a bold header row
func writeWorkbook(sheet string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(xlsxDateFormat)
}

// ImportRowError reports why one spreadsheet row was skipped
type ImportRowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

// ContestantRow is a parsed spreadsheet row with its position
type ContestantRow struct {
	Sheet string
	Row   int
	Input ContestantInput
}

var contestantColumns = map[string][]string{
	"name":        {"name", "nama", "full name"},
	"ic":          {"ic", "ic number", "no ic", "no. kp", "mykad"},
	"gender":      {"gender", "jantina"},
	"age":         {"age", "umur"},
	"edu_level":   {"edu_level", "education level", "tahap pendidikan"},
	"class_grade": {"class_grade", "grade", "darjah/tingkatan"},
	"class_name":  {"class_name", "class", "kelas"},
	"email":       {"email", "e-mail", "emel"},
	"phone":       {"phone", "telefon", "no. telefon"},
}

func findColumns(header []string, aliases map[string][]string) map[string]int {
	idx := make(map[string]int)
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(cell))
		for key, names := range aliases {
			for _, name := range names {
				if cell == name {
					idx[key] = i
				}
			}
		}
	}
	return idx
}

func cellAt(row []string, idx map[string]int, key string) string {
	i, ok := idx[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseContestantWorkbook reads contestants from every sheet having at least the name, IC,
// gender, age and education level columns
func ParseContestantWorkbook(r io.Reader) ([]ContestantRow, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX file: %w", err)
	}
	defer xlsx.Close()

	var parsed []ContestantRow
	found := false
	for _, sheet := range xlsx.GetSheetList() {
		rows, err := xlsx.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		idx := findColumns(rows[0], contestantColumns)
		missing := false
		for _, key := range []string{"name", "ic", "gender", "age", "edu_level"} {
			if _, ok := idx[key]; !ok {
				missing = true
			}
		}
		if missing {
			continue
		}
		found = true

		for i := 1; i < len(rows); i++ {
			row := rows[i]
			if cellAt(row, idx, "name") == "" && cellAt(row, idx, "ic") == "" {
				continue
			}
			age, _ := strconv.Atoi(cellAt(row, idx, "age"))
			parsed = append(parsed, ContestantRow{
				Sheet: sheet,
				Row:   i + 1,
				Input: ContestantInput{
					Name:       cellAt(row, idx, "name"),
					IC:         cellAt(row, idx, "ic"),
					Gender:     strings.ToUpper(cellAt(row, idx, "gender")),
					Age:        age,
					EduLevel:   cellAt(row, idx, "edu_level"),
					ClassGrade: cellAt(row, idx, "class_grade"),
					ClassName:  cellAt(row, idx, "class_name"),
					Email:      cellAt(row, idx, "email"),
					Phone:      cellAt(row, idx, "phone"),
				},
			})
		}
	}
	if !found {
		return nil, ErrMissingColumns
	}
	return parsed, nil
}

// RecipientRow is one campaign recipient read from a spreadsheet
type RecipientRow struct {
	Row          int
	Email        string
	Name         string
	Placeholders map[string]string
}

var recipientColumns = map[string][]string{
	"email": {"email", "e-mail", "emel"},
	"name":  {"name", "nama", "full name"},
}

// ParseRecipientWorkbook reads recipients from the first sheet with an email column; every
// other named column becomes a placeholder keyed by its lower-cased, underscored header
func ParseRecipientWorkbook(r io.Reader) ([]RecipientRow, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX file: %w", err)
	}
	defer xlsx.Close()

	for _, sheet := range xlsx.GetSheetList() {
		rows, err := xlsx.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		idx := findColumns(rows[0], recipientColumns)
		if _, ok := idx["email"]; !ok {
			continue
		}

		keys := make(map[int]string)
		for i, header := range rows[0] {
			if i == idx["email"] {
				continue
			}
			key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
			if key != "" {
				keys[i] = key
			}
		}

		var parsed []RecipientRow
		for i := 1; i < len(rows); i++ {
			row := rows[i]
			email := cellAt(row, idx, "email")
			if email == "" {
				continue
			}
			values := make(map[string]string, len(keys))
			for col, key := range keys {
				if col < len(row) {
					values[key] = strings.TrimSpace(row[col])
				}
			}
			parsed = append(parsed, RecipientRow{
				Row:          i + 1,
				Email:        strings.ToLower(email),
				Name:         cellAt(row, idx, "name"),
				Placeholders: values,
			})
		}
		return parsed, nil
	}
	return nil, ErrMissingColumns
}

// ImportContestants creates every valid row; invalid or duplicate rows are reported and skipped
func ImportContestants(db *gorm.DB, contingentID uint, rows []ContestantRow, createdBy *uint) *ImportResult {
	result := &ImportResult{Errors: []ImportRowError{}}
	for _, row := range rows {
		if row.Input.Name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Sheet: row.Sheet, Row: row.Row, Message: "name is required"})
			continue
		}
		if row.Input.Gender != "MALE" && row.Input.Gender != "FEMALE" {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Sheet: row.Sheet, Row: row.Row, Message: "gender must be MALE or FEMALE"})
			continue
		}
		if _, err := CreateContestant(db, contingentID, row.Input, createdBy); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Sheet: row.Sheet, Row: row.Row, Message: err.Error()})
			continue
		}
		result.Created++
	}
	return result
}

// AttendanceWorkbook lists the contestant attendance of an event
func AttendanceWorkbook(db *gorm.DB, eventID uint) ([]byte, error) {
	var rows []struct {
		ContestantName   string
		IC               string
		ContingentName   string
		TeamName         string
		Hashcode         string
		AttendanceStatus string
		AttendanceDate   *time.Time
	}
	err := db.Table("attendance_contestants").
		Select(`contestants.name AS contestant_name, attendance_contestants.ic AS ic, contingents.name AS contingent_name,
			teams.name AS team_name, attendance_contestants.hashcode AS hashcode,
			attendance_contestants.attendance_status AS attendance_status, attendance_contestants.attendance_date AS attendance_date`).
		Joins("JOIN contestants ON contestants.id = attendance_contestants.contestant_id").
		Joins("JOIN contingents ON contingents.id = attendance_contestants.contingent_id").
		Joins("LEFT JOIN teams ON teams.id = attendance_contestants.team_id").
		Where("attendance_contestants.event_id = ?", eventID).
		Order("contingents.name, contestants.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	data := make([][]interface{}, 0, len(rows))
	for i, r := range rows {
		data = append(data, []interface{}{i + 1, r.ContestantName, r.IC, r.ContingentName, r.TeamName, r.Hashcode, r.AttendanceStatus, formatTime(r.AttendanceDate)})
	}
	return writeWorkbook("Attendance", []string{"No", "Name", "IC", "Contingent", "Team", "Hashcode", "Status", "Checked In"}, data)
}

// ScoreboardWorkbook exports a ranked scoreboard
func ScoreboardWorkbook(board *Scoreboard) ([]byte, error) {
	data := make([][]interface{}, 0, len(board.Results))
	for _, e := range board.Results {
		rank := "-"
		if e.Rank > 0 {
			rank = strconv.Itoa(e.Rank)
		}
		total := ""
		if e.TotalScore != nil {
			total = e.TotalScore.StringFixed(2)
		}
		state := ""
		if e.State != nil {
			state = e.State.Name
		}
		data = append(data, []interface{}{rank, e.Team.Name, e.Contingent.Name, state, total, e.JudgingStatus, e.AttendanceStatus})
	}
	return writeWorkbook("Scoreboard", []string{"Rank", "Team", "Contingent", "State", "Total Score", "Judging Status", "Attendance"}, data)
}

// QuizResultsWorkbook exports the ranked attempts of a quiz
func QuizResultsWorkbook(rows []QuizResultRow) ([]byte, error) {
	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		data = append(data, []interface{}{r.Rank, r.ContestantName, r.ContingentName, r.Score, r.MaxScore, r.Percentage, r.TimeTaken, formatTime(r.CompletedAt)})
	}
	return writeWorkbook("Results", []string{"Rank", "Contestant", "Contingent", "Score", "Max Score", "Percentage", "Time (s)", "Completed"}, data)
}

// ContingentReportWorkbook lists every contingent with its institution, state and counts
func ContingentReportWorkbook(db *gorm.DB) ([]byte, error) {
	var rows []struct {
		Name           string
		ContingentType string
		StateName      string
		Contestants    int64
		Teams          int64
	}
	err := db.Table("contingents").
		Select(`contingents.name AS name, contingents.contingent_type AS contingent_type, COALESCE(states.name, '') AS state_name,
			(SELECT COUNT(*) FROM contestants WHERE contestants.contingent_id = contingents.id) AS contestants,
			(SELECT COUNT(*) FROM teams WHERE teams.contingent_id = contingents.id) AS teams`).
		Joins("LEFT JOIN states ON states.id = contingents.state_id").
		Order("contingents.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	data := make([][]interface{}, 0, len(rows))
	for i, r := range rows {
		data = append(data, []interface{}{i + 1, r.Name, r.ContingentType, r.StateName, r.Contestants, r.Teams})
	}
	return writeWorkbook("Contingents", []string{"No", "Contingent", "Type", "State", "Contestants", "Teams"}, data)
}

// EventRawListWorkbook lists every member of every team registered to an event
func EventRawListWorkbook(db *gorm.DB, eventID uint) ([]byte, error) {
	var registrations []models.EventContestTeam
	err := db.Joins("JOIN event_contests ON event_contests.id = event_contest_teams.event_contest_id").
		Where("event_contests.event_id = ?", eventID).
		Preload("EventContest.Contest").
		Preload("Team.Contingent").
		Preload("Team.Members.Contestant").
		Order("event_contest_teams.id").
		Find(&registrations).Error
	if err != nil {
		return nil, err
	}

	var data [][]interface{}
	for _, reg := range registrations {
		if reg.Team == nil {
			continue
		}
		contest := ""
		if reg.EventContest != nil && reg.EventContest.Contest != nil {
			contest = reg.EventContest.Contest.Name
		}
		contingent := ""
		if reg.Team.Contingent != nil {
			contingent = reg.Team.Contingent.Name
		}
		for _, m := range reg.Team.Members {
			if m.Contestant == nil {
				continue
			}
			data = append(data, []interface{}{
				contest, reg.Team.Name, reg.Status, contingent,
				m.Contestant.Name, m.Contestant.IC, m.Contestant.Gender, m.Contestant.Age, m.Contestant.EduLevel,
			})
		}
	}
	return writeWorkbook("Registrations", []string{"Contest", "Team", "Status", "Contingent", "Contestant", "IC", "Gender", "Age", "Education Level"}, data)
}

var schoolColumns = map[string][]string{
	"code":     {"code", "kod sekolah", "school code"},
	"name":     {"name", "nama sekolah", "school name"},
	"level":    {"level", "peringkat"},
	"category": {"category", "kategori"},
	"ppd":      {"ppd"},
	"city":     {"city", "bandar"},
	"state":    {"state", "negeri"},
}

// ImportSchools upserts schools by code from a workbook; states are matched by name
func ImportSchools(db *gorm.DB, r io.Reader) (*ImportResult, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX file: %w", err)
	}
	defer xlsx.Close()

	var states []models.State
	if err := db.Find(&states).Error; err != nil {
		return nil, err
	}
	stateByName := make(map[string]uint, len(states))
	for _, s := range states {
		stateByName[strings.ToUpper(s.Name)] = s.ID
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	found := false
	for _, sheet := range xlsx.GetSheetList() {
		rows, err := xlsx.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) < 2 {
			continue
		}
		idx := findColumns(rows[0], schoolColumns)
		_, hasCode := idx["code"]
		_, hasName := idx["name"]
		if !hasCode || !hasName {
			continue
		}
		found = true

		for i := 1; i < len(rows); i++ {
			code := cellAt(rows[i], idx, "code")
			name := cellAt(rows[i], idx, "name")
			if code == "" || name == "" {
				result.Skipped++
				result.Errors = append(result.Errors, ImportRowError{Sheet: sheet, Row: i + 1, Message: "code and name are required"})
				continue
			}
			school := models.School{
				Code:     code,
				Name:     name,
				Level:    cellAt(rows[i], idx, "level"),
				Category: cellAt(rows[i], idx, "category"),
				Ppd:      cellAt(rows[i], idx, "ppd"),
				City:     cellAt(rows[i], idx, "city"),
			}
			if id, ok := stateByName[strings.ToUpper(cellAt(rows[i], idx, "state"))]; ok {
				school.StateID = &id
			}

			var existing models.School
			res := db.Where("code = ?", code).Limit(1).Find(&existing)
			if res.Error != nil {
				return nil, res.Error
			}
			if res.RowsAffected > 0 {
				school.ID = existing.ID
				school.CreatedAt = existing.CreatedAt
			}
			if err := db.Save(&school).Error; err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, ImportRowError{Sheet: sheet, Row: i + 1, Message: err.Error()})
				continue
			}
			result.Created++
		}
	}
	if !found {
		return nil, ErrMissingColumns
	}
	return result, nil
}
