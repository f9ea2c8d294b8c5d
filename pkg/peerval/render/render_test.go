package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/peerval/pkg/peerval/metrics"
	"github.com/komsit37/peerval/pkg/peerval/num"
	"github.com/komsit37/peerval/pkg/peerval/report"
	"github.com/komsit37/peerval/pkg/peerval/types"
)

func sampleView() View {
	return View{
		Name: "Software",
		Table: metrics.Table{
			ID:      "ticker",
			Labels:  []string{"shortName"},
			Columns: []string{"CompositeRank_All", "MarketCap", "ROE"},
			Rows: []metrics.Row{
				{Ticker: "MSFT", Labels: map[string]string{"shortName": "Microsoft"}, Values: map[string]num.Value{
					"CompositeRank_All": num.Of(1.5), "MarketCap": num.Of(3.1e12), "ROE": num.Of(0.35),
				}},
				{Ticker: "SNOW", Labels: map[string]string{}, Values: map[string]num.Value{
					"CompositeRank_All": num.Of(4), "MarketCap": num.Of(5.5e10),
				}},
			},
		},
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{"", "table", "JSON", "tickers"} {
		r, err := New(f)
		require.NoError(t, err, f)
		assert.NotNil(t, r)
	}
	_, err := New("xml")
	require.Error(t, err)
}

func TestTableRenderer(t *testing.T) {
	var buf bytes.Buffer
	err := NewTableRenderer().Render(&buf, []View{sampleView()}, RenderOptions{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "COMPOSITERANK_ALL")
	assert.Contains(t, out, "Microsoft")
	assert.Contains(t, out, "3.10T")
	assert.Contains(t, out, "55.00B")
	assert.Contains(t, out, "35.0%")
	assert.Less(t, strings.Index(out, "MSFT"), strings.Index(out, "SNOW"))
}

func TestTableRenderer_QuotesAndMultipleViews(t *testing.T) {
	v := sampleView()
	v.Columns = []string{"ticker", "ROE"}
	v.Quotes = map[string]types.Quote{"MSFT": {Price: "510.02", ChgFmt: "-0.41%", ChgRaw: -0.41}}
	other := sampleView()
	other.Name = "Cloud"

	var buf bytes.Buffer
	require.NoError(t, NewTableRenderer().Render(&buf, []View{v, other}, RenderOptions{MaxColWidth: 20}))
	out := buf.String()
	assert.Contains(t, out, "CHG%")
	assert.Contains(t, out, "510.02")
	assert.Contains(t, out, "-0.41%")
	assert.Contains(t, out, "SOFTWARE")
	assert.Contains(t, out, "CLOUD")
}

func TestWithQuoteColumns(t *testing.T) {
	assert.Equal(t, []string{"ticker", "price", "chg%", "ROE"}, withQuoteColumns([]string{"ticker", "ROE"}, "ticker"))
	assert.Equal(t, []string{"price", "chg%", "ROE"}, withQuoteColumns([]string{"ROE"}, "ticker"))
}

func TestJSONRenderer(t *testing.T) {
	v := sampleView()
	v.Quotes = map[string]types.Quote{"SNOW": {Price: "210.00"}}

	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, []View{v}, RenderOptions{PrettyJSON: true}))

	var got []struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
		Rows    []struct {
			Ticker string         `json:"ticker"`
			Fields map[string]any `json:"fields"`
			Quote  *types.Quote   `json:"quote"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"ticker", "shortName", "CompositeRank_All", "MarketCap", "ROE"}, got[0].Columns)
	require.Len(t, got[0].Rows, 2)
	assert.Equal(t, 0.35, got[0].Rows[0].Fields["ROE"])
	assert.Nil(t, got[0].Rows[1].Fields["ROE"], "missing encodes as null")
	assert.Equal(t, "", got[0].Rows[1].Fields["shortName"])
	assert.Nil(t, got[0].Rows[0].Quote)
	require.NotNil(t, got[0].Rows[1].Quote)
	assert.Equal(t, "210.00", got[0].Rows[1].Quote.Price)
}

func TestInspection(t *testing.T) {
	ins := report.Inspection{
		Sheets:    []string{"Raw_Prices", "Peer_Final"},
		Nulls:     []report.NullCount{{Column: "marketCap", Missing: 1, Total: 7}},
		Composite: "CompositeRank_All",
		Top:       []report.Ranked{{Ticker: "CCC", Score: num.Of(1.5)}},
		Bottom:    []report.Ranked{{Ticker: "DDD", Score: num.Of(6)}},
	}
	var buf bytes.Buffer
	require.NoError(t, Inspection(&buf, ins))
	out := buf.String()
	assert.Contains(t, out, "Raw_Prices, Peer_Final")
	assert.Contains(t, out, "marketCap")
	assert.Contains(t, out, "TOP 1 BY COMPOSITERANK_ALL")
	assert.Less(t, strings.Index(out, "CCC"), strings.Index(out, "DDD"))

	buf.Reset()
	require.NoError(t, Inspection(&buf, report.Inspection{Sheets: []string{"Raw_Prices"}}))
	assert.Contains(t, buf.String(), "no composite ranking found")
}

func TestTickersRenderer(t *testing.T) {
	a, b := sampleView(), sampleView()
	var buf bytes.Buffer
	require.NoError(t, NewTickersRenderer().Render(&buf, []View{a, b}, RenderOptions{}))
	assert.Equal(t, "MSFT,SNOW\n", buf.String())
}
