package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birthdayclub/internal/domain"
)

type sample struct {
	Title  string   `json:"title" validate:"min=3,max=10"`
	Count  int      `json:"count" validate:"min=1,max=100"`
	Owner  string   `json:"owner_id" validate:"required,uuid"`
	Emails []string `json:"emails" validate:"min=1,dive,email"`
	Note   *string  `json:"note" validate:"omitempty,max=3"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{
		Title:  "Party",
		Count:  5,
		Owner:  "7f0c1f5e-8d2b-4a8c-9a43-0b7d28d1c111",
		Emails: []string{"a@b.test"},
	})
	assert.NoError(t, err)
}

func TestStruct_FieldMessages(t *testing.T) {
	long := "toolong"
	err := Struct(sample{
		Title:  "ab",
		Count:  101,
		Owner:  "nope",
		Emails: []string{"ok@b.test", "bad"},
		Note:   &long,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "must be at least 3 characters", ve.Fields["title"])
	assert.Equal(t, "must be at most 100", ve.Fields["count"])
	assert.Equal(t, "must be a valid UUID", ve.Fields["owner_id"])
	assert.Equal(t, "must be a valid email address", ve.Fields["emails[1]"])
	assert.Equal(t, "must be at most 3 characters", ve.Fields["note"])
}

func TestStruct_Required(t *testing.T) {
	err := Struct(sample{Title: "Party", Count: 1})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "is required", ve.Fields["owner_id"])
	assert.Equal(t, "must contain at least 1 items", ve.Fields["emails"])
}

func TestStruct_NotAStruct(t *testing.T) {
	err := Struct(42)
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.False(t, errors.As(err, &ve))
}
