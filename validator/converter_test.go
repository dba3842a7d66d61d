package validator

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedgate/admission/errcode"
)

type sampleConfig struct {
	Name  string
	Count int
}

func (c sampleConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Count, validation.Min(1)),
	)
}

type plainErrorConfig struct{}

func (plainErrorConfig) Validate() error {
	return errors.New("broken")
}

func TestValidateRequest_Valid(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleConfig{Name: "x", Count: 1}))
}

func TestValidateRequest_FieldErrorsBecomeCodedError(t *testing.T) {
	err := ValidateRequest(sampleConfig{})
	require.Error(t, err)

	var coded *errcode.CodedError
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, 400, coded.HTTPStatus())
	assert.Equal(t, "VALIDATION_FAILED", coded.Reason())

	fields, ok := coded.Data()["fields"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Count")
}

func TestValidateRequest_NonOzzoErrorPassesThrough(t *testing.T) {
	err := ValidateRequest(plainErrorConfig{})
	require.Error(t, err)

	var coded *errcode.CodedError
	assert.False(t, errors.As(err, &coded))
}
