package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	var doc map[string]any
	require.NoError(t, json.Unmarshal(schema.Source(), &doc))
	assert.Equal(t, "object", doc["type"])
}

func TestValidate_Valid(t *testing.T) {
	valid := []string{
		`{"title":"Project Plan","outline":[{"level":"H1","text":"1. Overview","page":1}]}`,
		`{"title":"Empty Document","outline":[]}`,
		`{"title":"Error: broken","outline":[]}`,
	}
	for _, doc := range valid {
		assert.NoError(t, schema.Validate([]byte(doc)), doc)
	}
}

func TestValidate_Invalid(t *testing.T) {
	invalid := map[string]string{
		"not json":        `{"title":`,
		"missing outline": `{"title":"x"}`,
		"bad level":       `{"title":"x","outline":[{"level":"H4","text":"a","page":1}]}`,
		"page zero":       `{"title":"x","outline":[{"level":"H1","text":"a","page":0}]}`,
		"fractional page": `{"title":"x","outline":[{"level":"H1","text":"a","page":1.5}]}`,
		"empty text":      `{"title":"x","outline":[{"level":"H1","text":"","page":1}]}`,
		"extra key":       `{"title":"x","outline":[],"pages":3}`,
		"outline object":  `{"title":"x","outline":{}}`,
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, schema.Validate([]byte(doc)))
		})
	}
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, schema.ValidateValue(outline.EmptyStructure()))
	assert.NoError(t, schema.ValidateValue(outline.Structure{
		Title:   "Guide",
		Outline: []outline.Entry{{Level: outline.H3, Text: "(a) Item", Page: 4}},
	}))
	assert.Error(t, schema.ValidateValue(outline.Structure{Title: "nil outline"}))
}
