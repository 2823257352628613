package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contestantForm struct {
	Name     string `json:"name" binding:"required" validate:"required"`
	IC       string `json:"ic" validate:"required,ic_number"`
	EduLevel string `json:"edu_level" validate:"required,edu_level"`
	Age      int    `json:"age" validate:"min=5,max=99"`
}

func TestIsValidIC(t *testing.T) {
	assert.True(t, IsValidIC("080101101234"))
	assert.True(t, IsValidIC("080101-10-1234"))
	assert.False(t, IsValidIC("08010110123"))
	assert.False(t, IsValidIC("08010110123A"))
	assert.Equal(t, "080101101234", NormalizeIC(" 080101-10-1234 "))
}

func TestIsValidEduLevel(t *testing.T) {
	assert.True(t, IsValidEduLevel("sekolah rendah"))
	assert.True(t, IsValidEduLevel("Belia"))
	assert.False(t, IsValidEduLevel("university"))
}

func TestValidationMessages(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	err := v.Struct(contestantForm{Name: "Ali", IC: "123", EduLevel: "kindergarten", Age: 3})
	msgs := ValidationMessages(err)
	require.NotNil(t, msgs)
	assert.Equal(t, "IC number must contain 12 digits", msgs["ic"])
	assert.Contains(t, msgs["edu_level"], "sekolah rendah")
	assert.Equal(t, "Must be at least 5", msgs["age"])
	assert.NotContains(t, msgs, "name")

	assert.NoError(t, v.Struct(contestantForm{Name: "Ali", IC: "080101101234", EduLevel: "belia", Age: 20}))
	assert.Nil(t, ValidationMessages(assert.AnError))
}
