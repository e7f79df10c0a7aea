package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"claimline/internal/content"
	"claimline/internal/domain"
)

// Tabular renders structured item data into form files. It backs the
// content generator's standard inventory form (text table) and
// detailed spreadsheet (CSV).
type Tabular struct {
	// Dir is where rendered form files are staged before assembly
	// copies them into the package tree. Defaults to the system temp
	// directory.
	Dir string
}

func (t *Tabular) Render(items []domain.Item, categories, rooms []string, kind content.TemplateKind, opts domain.PackageOptions) (string, error) {
	switch kind {
	case content.TemplateStandardForm:
		return t.renderStandardForm(items, categories, rooms, opts)
	case content.TemplateSpreadsheet:
		return t.renderSpreadsheet(items)
	default:
		return "", fmt.Errorf("unknown template kind %q", kind)
	}
}

func (t *Tabular) renderStandardForm(items []domain.Item, categories, rooms []string, opts domain.PackageOptions) (string, error) {
	w := table.NewWriter()
	w.SetTitle("STANDARD INSURANCE INVENTORY FORM")
	w.AppendHeader(table.Row{"#", "Item", "Category", "Room", "Serial Number", "Purchase Date", "Price"})
	for i, item := range items {
		w.AppendRow(table.Row{
			i + 1,
			item.Name,
			item.Category,
			item.Room,
			strValue(item.SerialNumber),
			strValue(item.PurchaseDate),
			priceValue(item.PurchasePrice),
		})
	}
	w.AppendFooter(table.Row{"", "Total", "", "", "", "", fmt.Sprintf("$%.2f", domain.TotalValue(items))})

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Policy Holder: %s\nPolicy Number: %s\n", opts.PolicyHolder, opts.PolicyNumber))
	b.WriteString(fmt.Sprintf("Categories: %s\nRooms: %s\n\n", strings.Join(categories, ", "), strings.Join(rooms, ", ")))
	b.WriteString(w.Render())
	b.WriteString("\n")
	return t.writeStaged("StandardInventoryForm-*.txt", b.String())
}

func (t *Tabular) renderSpreadsheet(items []domain.Item) (string, error) {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"Item", "Category", "Room", "Serial Number", "Purchase Date", "Price", "Receipts", "Has Photo", "Has Warranty"})
	for _, item := range items {
		w.AppendRow(table.Row{
			item.Name,
			item.Category,
			item.Room,
			strValue(item.SerialNumber),
			strValue(item.PurchaseDate),
			priceValue(item.PurchasePrice),
			len(item.Receipts),
			item.HasPhoto(),
			item.Warranty != nil,
		})
	}
	return t.writeStaged("DetailedItemSpreadsheet-*.csv", w.RenderCSV()+"\n")
}

func (t *Tabular) writeStaged(pattern, data string) (string, error) {
	dir := t.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func priceValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("$%.2f", *v)
}
