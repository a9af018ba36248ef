package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable(t *testing.T) {
	input := "\ufeffChannel , Spend\nGoogle Ads,\"$1,000\"\n\n , \nFB Ads,$5\n"

	table, err := ReadTable(strings.NewReader(input), "test.csv")

	require.NoError(t, err)
	assert.Equal(t, []string{"Channel", "Spend"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Google Ads", table.Value(table.Rows[0], "channel"))
	assert.Equal(t, "$1,000", table.Value(table.Rows[0], "Spend"))
	assert.Equal(t, "", table.Value(table.Rows[1], "Visitors"))
}

func TestReadTableErrors(t *testing.T) {
	_, err := ReadTable(strings.NewReader(""), "vazio.csv")
	assert.Error(t, err)

	table, err := ReadTable(strings.NewReader("Channel\nGoogle Ads\n"), "m.csv")
	require.NoError(t, err)

	err = table.RequireColumns("Channel", "Spend", "Month")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "Spend, Month")
}
