package users

import (
	"fmt"
	"net/http"
	"strings"

	"techlympics/database"
	"techlympics/models"
	"techlympics/utils"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// userColumns locates the known headers of a sheet, missing columns are -1
type userColumns struct {
	name, email, role, username, phone int
}

func findUserColumns(header []string) userColumns {
	cols := userColumns{-1, -1, -1, -1, -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "name", "nama", "full name":
			cols.name = i
		case "email", "e-mail", "emel":
			cols.email = i
		case "role", "peranan":
			cols.role = i
		case "username":
			cols.username = i
		case "phone", "telefon", "phone number":
			cols.phone = i
		}
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func validRole(role string) bool {
	for _, r := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ImportUsersFromXLSX creates the accounts listed in every sheet of an uploaded workbook
// @Summary Import users from XLSX
// @Description Each sheet needs name, email and role headers; username and phone are optional. Accounts get the default password.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX file"
// @Success 201 {object} ImportResult
// @Failure 400 {object} map[string]string
// @Router /organizer/users/import [post]
// @Security Bearer
func ImportUsersFromXLSX(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Failed to get file: "+err.Error())
		return
	}
	openedFile, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to open file: "+err.Error())
		return
	}
	defer openedFile.Close()

	xlsx, err := excelize.OpenReader(openedFile)
	if err != nil {
		response.Error(c, http.StatusBadRequest, ErrFailedToParseFile)
		return
	}
	defer xlsx.Close()

	hashedPassword, err := utils.HashPassword(defaultPassword())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, ErrHashPasswordFailed)
		return
	}

	result := ImportResult{Errors: []string{}}
	found := false
	seen := map[string]bool{}
	for _, sheetName := range xlsx.GetSheetList() {
		rows, err := xlsx.GetRows(sheetName)
		if err != nil || len(rows) < 2 {
			continue
		}
		cols := findUserColumns(rows[0])
		if cols.name == -1 || cols.email == -1 || cols.role == -1 {
			continue
		}
		found = true

		for i, row := range rows[1:] {
			email := strings.ToLower(cell(row, cols.email))
			if email == "" {
				continue
			}
			line := fmt.Sprintf("%s row %d", sheetName, i+2)
			role := strings.ToUpper(cell(row, cols.role))
			if !validRole(role) {
				result.Errors = append(result.Errors, line+": "+ErrInvalidRole)
				continue
			}
			username := cell(row, cols.username)
			if seen[email] || conflictMessage(database.DB, email, username, 0) != "" {
				result.Skipped++
				continue
			}

			user := models.User{
				Name:     cell(row, cols.name),
				Email:    email,
				Password: hashedPassword,
				Role:     role,
				Phone:    cell(row, cols.phone),
				IsActive: true,
			}
			if username != "" {
				user.Username = &username
			}
			if err := database.DB.Create(&user).Error; err != nil {
				result.Errors = append(result.Errors, line+": "+ErrFailedToCreateUser)
				continue
			}
			seen[email] = true
			result.Created++
		}
	}

	if !found {
		response.Error(c, http.StatusBadRequest, ErrMissingColumns)
		return
	}
	c.JSON(http.StatusCreated, result)
}
