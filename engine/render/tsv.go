package render

import (
	"strconv"
	"strings"

	"github.com/loomworks/loom/engine/bom"
)

var bomColumns = []string{"Id", "Description", "Qty", "Unit", "Designators", "PN", "Manufacturer", "MPN", "Supplier", "SPN"}

// BOMTSV renders BOM lines as tab-separated text with a header row.
// Line ids start at 1 and follow the aggregation order.
func BOMTSV(items []bom.Item) []byte {
	var sb strings.Builder
	sb.WriteString(strings.Join(bomColumns, "\t"))
	sb.WriteByte('\n')
	for i, it := range items {
		row := []string{
			strconv.Itoa(i + 1),
			it.Description,
			strconv.FormatFloat(it.Qty, 'f', -1, 64),
			it.Unit,
			strings.Join(it.Designators, ", "),
			it.PartNumbers["pn"],
			it.PartNumbers["manufacturer"],
			it.PartNumbers["mpn"],
			it.PartNumbers["supplier"],
			it.PartNumbers["spn"],
		}
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
