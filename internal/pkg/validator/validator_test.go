package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsEmpty(c.input), "IsEmpty(%q)", c.input)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), email)
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b"))
	assert.True(t, IsValidUUID("0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B"))
	assert.False(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsValidUUID("0188d0f27b8c7b4a8a2b6b8b8b8b8b8b"))
	assert.False(t, IsValidUUID(""))
}

func TestIsValidDate(t *testing.T) {
	d, ok := IsValidDate("2025-01-06")
	require.True(t, ok)
	assert.Equal(t, 2025, d.Year())

	_, ok = IsValidDate("06/01/2025")
	assert.False(t, ok)
	_, ok = IsValidDate("2025-02-30")
	assert.False(t, ok)
}

func TestIsHalfStep(t *testing.T) {
	assert.True(t, IsHalfStep(decimal.NewFromFloat(0.5)))
	assert.True(t, IsHalfStep(decimal.NewFromInt(12)))
	assert.True(t, IsHalfStep(decimal.RequireFromString("7.5")))
	assert.False(t, IsHalfStep(decimal.RequireFromString("1.25")))
	assert.False(t, IsHalfStep(decimal.RequireFromString("0.1")))
}

type sampleRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,date"`
	Email       string `json:"email" validate:"omitempty,email"`
	Code        string `json:"employee_code" validate:"omitempty,employee_code"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := Struct(sampleRequest{LeaveTypeID: "x", StartDate: "2025-01-06"})
		assert.NoError(t, err)
	})

	t.Run("uses json names and readable messages", func(t *testing.T) {
		err := Struct(sampleRequest{StartDate: "tomorrow", Email: "nope", Code: "12"})
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		m := errs.ToMap()
		assert.Equal(t, "Leave Type Id is required", m["leave_type_id"])
		assert.Equal(t, "Start Date must be a date in YYYY-MM-DD format", m["start_date"])
		assert.Equal(t, "Email must be a valid email address", m["email"])
		assert.Equal(t, "Employee Code must match the format 0000-0000", m["employee_code"])
	})
}
