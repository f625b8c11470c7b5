package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/validation"
)

type inner struct {
	Score *float64 `json:"score" validate:"required,gte=0,lte=1"`
}

type request struct {
	Name    string `json:"name" validate:"required"`
	Quality int    `json:"quality" validate:"gte=0,lte=3"`
	Mode    string `json:"mode" validate:"omitempty,oneof=easy hard"`
	Nested  *inner `json:"nested" validate:"required"`
	Skipped string `json:"-"`
}

func TestStruct_Valid(t *testing.T) {
	score := 0.5
	errs := validation.Struct(request{Name: "a", Quality: 2, Mode: "easy", Nested: &inner{Score: &score}})
	assert.Nil(t, errs)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	score := 1.5
	errs := validation.Struct(request{Quality: 7, Mode: "medium", Nested: &inner{Score: &score}})
	require.Len(t, errs, 4)

	fields := map[string]string{}
	for _, fe := range errs {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "quality must be less than or equal to 3", fields["quality"])
	assert.Equal(t, "mode must be one of: easy hard", fields["mode"])
	assert.Equal(t, "nested.score must be less than or equal to 1", fields["nested.score"])
	assert.Contains(t, errs.Error(), "name is required")
}

func TestStruct_RequiredPointer(t *testing.T) {
	errs := validation.Struct(request{Name: "a"})
	require.Len(t, errs, 1)
	assert.Equal(t, "nested", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
}
