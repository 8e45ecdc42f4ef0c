package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	vars := map[string]any{"name": "World", "count": 3}

	assert.Equal(t, "Hello World", Expand("Hello ${name}", vars))
	assert.Equal(t, "3 results", Expand("${count} results", vars))
	assert.Equal(t, "", Expand("", vars))
	assert.Equal(t, "no placeholders", Expand("no placeholders", vars))
}

func TestExpand_MissingKept(t *testing.T) {
	out := Expand("Hello ${missing}", map[string]any{})
	assert.Equal(t, "Hello ${missing}", out)
}

func TestExpand_RepeatedVariable(t *testing.T) {
	out := Expand("${a} and ${a}", map[string]any{"a": "x"})
	assert.Equal(t, "x and x", out)
}

func TestMustExpand_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustExpand("${a} ${b}", map[string]any{"a": 1})
	})
	assert.NotPanics(t, func() {
		assert.Equal(t, "1", MustExpand("${a}", map[string]any{"a": 1}))
	})
}
