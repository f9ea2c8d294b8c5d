package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		expr  string
		match []string
		miss  []string
	}{
		{"", []string{"anything"}, nil},
		{"msft, orcl", []string{"MSFT", "orcl"}, []string{"SAP"}},
		{"Software/*", []string{"Software/Security"}, []string{"Semis/Memory"}},
		{"/^S[AN]/", []string{"SAP", "SNOW"}, []string{"MSFT"}},
		{"sec", []string{"Software/Security"}, []string{"Data"}},
		{"!SNOW,MDB", []string{"DDOG"}, []string{"SNOW", "mdb"}},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			f, err := Parse(tc.expr)
			require.NoError(t, err)
			for _, m := range tc.match {
				assert.True(t, f.Match(m), m)
			}
			for _, m := range tc.miss {
				assert.False(t, f.Match(m), m)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("/([/")
	require.Error(t, err)
}

func TestSetsAndTickers(t *testing.T) {
	sets := []types.PeerSet{
		{Name: "Software/Platforms", Tickers: []string{"MSFT", "ORCL"}},
		{Name: "Software/Security", Tickers: []string{"PANW", "MSFT"}},
		{Name: "Semis", Tickers: []string{"NVDA"}},
	}
	f, err := Parse("Software/*")
	require.NoError(t, err)

	got := Sets(sets, f)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"MSFT", "ORCL", "PANW"}, Union(got))
	assert.Len(t, Sets(sets, nil), 3)

	nm, err := Parse("!MSFT")
	require.NoError(t, err)
	assert.Equal(t, []string{"ORCL", "PANW"}, Tickers(Union(got), nm))
}
