package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordstudy/internal/storeerr"
)

type part struct {
	WrittenForm string   `json:"written_form" validate:"required"`
	Readings    []string `json:"readings" validate:"required,min=1,dive,required"`
}

type sample struct {
	Name  string `json:"name" validate:"required,max=10"`
	URL   string `json:"url" validate:"omitempty,url"`
	Parts []part `json:"parts" validate:"required,min=1,dive"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct("op", sample{
		Name:  "flash",
		URL:   "https://example.com/flash",
		Parts: []part{{WrittenForm: "食", Readings: []string{"ta"}}},
	})
	assert.NoError(t, err)
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct("activities.create", sample{
		Name:  "",
		URL:   "not a url",
		Parts: []part{{WrittenForm: "", Readings: []string{}}},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, storeerr.ErrInvalidArgument)
	msg := err.Error()
	assert.Contains(t, msg, "activities.create")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "url must be a valid URL")
	assert.Contains(t, msg, "parts[0].written_form is required")
	assert.Contains(t, msg, "parts[0].readings must have at least 1 item(s)")
}

func TestStruct_EmptyList(t *testing.T) {
	err := Struct("op", sample{Name: "x", Parts: []part{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parts must have at least 1 item(s)")
}

func TestStruct_EmptyReading(t *testing.T) {
	err := Struct("op", sample{Name: "x", Parts: []part{{WrittenForm: "食", Readings: []string{""}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parts[0].readings[0] is required")
}
