package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPageClamps(t *testing.T) {
	require.Equal(t, Page{Number: 1, Size: DefaultPageSize}, NewPage(0, 0))
	require.Equal(t, Page{Number: 3, Size: MaxPageSize}, NewPage(3, 500))
	require.Equal(t, 40, NewPage(3, 20).Offset())
	require.Equal(t, 0, NewPage(-2, 20).Offset())
}

func TestPageTotalPages(t *testing.T) {
	p := NewPage(1, 10)
	require.Equal(t, 0, p.TotalPages(0))
	require.Equal(t, 1, p.TotalPages(10))
	require.Equal(t, 2, p.TotalPages(11))
}
