// Package render turns book enumerations into human-readable text.
package render

import (
	"io"
	"strconv"
	"strings"

	"matchbook/pkg/orderbook"

	"github.com/olekukonko/tablewriter"
)

// Text renders the canonical snapshot form: ask lines ("#S0<id>\t<price>\t<qty>") in ask
// priority, then bid lines ("#B0...") in bid priority.
func Text(asks, bids []orderbook.Entry) string {
	var b strings.Builder
	writeLines(&b, "#S0", asks)
	writeLines(&b, "#B0", bids)
	return b.String()
}

func writeLines(b *strings.Builder, prefix string, entries []orderbook.Entry) {
	for _, entry := range entries {
		b.WriteString(prefix)
		b.WriteString(strconv.FormatUint(entry.ID, 10))
		b.WriteByte('\t')
		b.WriteString(entry.Price.String())
		b.WriteByte('\t')
		b.WriteString(strconv.FormatInt(entry.Quantity, 10))
		b.WriteByte('\n')
	}
}

// Table writes asks and bids as an ASCII table, asks first.
func Table(w io.Writer, asks, bids []orderbook.Entry) {
	writer := tablewriter.NewWriter(w)
	writer.SetHeader([]string{"side", "id", "price", "quantity"})
	for _, entries := range [][]orderbook.Entry{asks, bids} {
		for _, entry := range entries {
			writer.Append([]string{
				string(entry.Side),
				strconv.FormatUint(entry.ID, 10),
				entry.Price.String(),
				strconv.FormatInt(entry.Quantity, 10),
			})
		}
	}
	writer.SetCaption(true, "order book")
	writer.Render()
}
