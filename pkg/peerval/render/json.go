package render

import (
	"encoding/json"
	"io"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// jsonModel is the output shape for JSONRenderer.
type jsonModel struct {
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
	Rows    []jsonRow `json:"rows"`
}

type jsonRow struct {
	Ticker string         `json:"ticker"`
	Fields map[string]any `json:"fields"`
	Quote  *types.Quote   `json:"quote,omitempty"`
}

type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer { return &JSONRenderer{} }

// Render writes raw values; missing numbers become null.
func (r *JSONRenderer) Render(w io.Writer, views []View, opts RenderOptions) error {
	out := make([]jsonModel, 0, len(views))
	for _, v := range views {
		cols := v.columns()
		rows := make([]jsonRow, 0, v.Table.Len())
		for i, row := range v.Table.Rows {
			fields := make(map[string]any, len(cols))
			for _, c := range cols {
				s, val, numeric := v.Table.Cell(i, c)
				if numeric {
					fields[c] = val
				} else {
					fields[c] = s
				}
			}
			jr := jsonRow{Ticker: row.Ticker, Fields: fields}
			if q, ok := v.Quotes[row.Ticker]; ok {
				jr.Quote = &q
			}
			rows = append(rows, jr)
		}
		out = append(out, jsonModel{Name: v.Name, Columns: cols, Rows: rows})
	}
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
