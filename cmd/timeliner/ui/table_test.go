package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	table := NewTable("Timelines", "ID", "Name")
	table.AddRow("sample1", "World Wars")
	table.AddRow("sample2")

	view := table.View(PlainStyles())
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Timelines", lines[0])
	assert.Contains(t, lines[1], "ID")
	assert.Contains(t, lines[3], "World Wars")
	assert.Equal(t, len([]rune(lines[3])), len([]rune(lines[4])), "short rows are padded")
}

func TestTable_Empty(t *testing.T) {
	assert.Empty(t, NewTable("x", "a").View(PlainStyles()))
}
