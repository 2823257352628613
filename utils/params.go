package utils

import (
	"net/http"
	"strconv"

	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// ParseUintParam reads a positive integer path parameter, answering 400 itself when it is invalid
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(value), true
}

// QueryUint reads an optional positive integer query parameter
func QueryUint(c *gin.Context, name string) *uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || value == 0 {
		return nil
	}
	v := uint(value)
	return &v
}

// BindJSON binds the request body, answering 400 with field messages on failure
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		if msgs := ValidationMessages(err); msgs != nil {
			response.ValidationError(c, msgs)
			return false
		}
		response.Error(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// SendXLSX answers with a spreadsheet attachment
func SendXLSX(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
