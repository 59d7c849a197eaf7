package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lang string

func (l lang) String() string { return string(l) }

func TestValidatorCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	v := NewValidator().
		Field("path", file, Required, RegularFile).
		Field("language", lang("ja"), OneOf("en", "ja"))
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Error())
	assert.Empty(t, v.ErrorMessage())

	v = NewValidator().
		Field("path", dir, Required, RegularFile).
		Field("api_key", " ", Required).
		Field("language", lang("fr"), OneOf("en", "ja"))
	require.True(t, v.HasErrors())
	require.Len(t, v.Errors(), 3)
	assert.Equal(t, "is not a regular file", v.Errors()[0].Message)
	assert.Equal(t, "is required", v.Errors()[1].Message)
	assert.Equal(t, "must be one of [en, ja]", v.Errors()[2].Message)
	assert.Contains(t, v.Error().Error(), "field 'language'")
}

func TestRegularFileMissing(t *testing.T) {
	err := RegularFile("path", filepath.Join(t.TempDir(), "nope"))
	require.NotNil(t, err)
	assert.Equal(t, "does not exist or is not readable", err.Message)
	assert.NotNil(t, RegularFile("path", 3))
}

func TestOneOfRejectsNonStrings(t *testing.T) {
	err := OneOf("a")("field", 42)
	require.NotNil(t, err)
	assert.Equal(t, "must be a string", err.Message)
}
