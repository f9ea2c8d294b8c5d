package render

import (
	"fmt"
	"io"
	"strings"
)

// tickersRenderer prints all ranked tickers in a single comma-separated line.
type tickersRenderer struct{}

func NewTickersRenderer() Renderer {
	return tickersRenderer{}
}

func (tickersRenderer) Render(w io.Writer, views []View, _ RenderOptions) error {
	seen := map[string]struct{}{}
	symbols := make([]string, 0)
	for _, v := range views {
		for _, t := range v.Table.Tickers() {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			symbols = append(symbols, t)
		}
	}
	_, err := fmt.Fprintln(w, strings.Join(symbols, ","))
	return err
}
