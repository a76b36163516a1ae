package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentledger/talentledger/internal/apperr"
)

type sample struct {
	ID    string `validate:"required,uuid"`
	Email string `validate:"required,email"`
	Title string `validate:"omitempty,max=5"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(sample{ID: "6f2c1b8e-8f3e-4a51-9a43-1f1f3b6c2d10", Email: "a@b.c"}))

	err := Struct(sample{Email: "nope", Title: "way too long"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	msg := apperr.PublicMessage(err)
	assert.Contains(t, msg, "id is required")
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "title must be at most 5 characters")
}
