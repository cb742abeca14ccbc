package pdftext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileDealsFixture(t *testing.T) {
	lines, err := ExtractFile(context.Background(), "testdata/deals.pdf")
	require.NoError(t, err)
	require.Len(t, lines, 10)

	assert.Equal(t, "All Deals Report PROCESSED", lines[0])
	assert.Equal(t, "1 - 1000001 DOE, JANE  ST100  2,500.00  300.00  2,500.00  300.00", lines[1])
	assert.Equal(t, "01/15/24 SMITH,BOB JONES,AMY New Retail 12 500.00 1200", lines[2])
	assert.Equal(t, "Trade: 2019 Ford F150", lines[6])
	assert.Equal(t, "Springfield Motors", lines[9])
}

func TestExtractFileHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractFile(ctx, "testdata/deals.pdf")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(context.Background(), "testdata/missing.pdf")
	require.Error(t, err)
}
