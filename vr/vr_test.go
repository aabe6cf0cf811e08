package vr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	got, err := Parse("PN")
	assert.NoError(t, err)
	assert.Equal(t, PN, got)

	_, err = Parse("ZZ")
	assert.Error(t, err)
}

func TestHasLongLengthField(t *testing.T) {
	assert.True(t, HasLongLengthField(OB))
	assert.True(t, HasLongLengthField(SQ))
	assert.False(t, HasLongLengthField(PN))
	assert.False(t, HasLongLengthField(US))
}

func TestIsTextual(t *testing.T) {
	assert.True(t, IsTextual(CS))
	assert.False(t, IsTextual(UI))
	assert.False(t, IsTextual(OB))
}

func TestMayBeEncapsulated(t *testing.T) {
	assert.True(t, MayBeEncapsulated(OB))
	assert.True(t, MayBeEncapsulated(OW))
	assert.False(t, MayBeEncapsulated(UN))
}
