package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateHeaders is the header row of the upload template, in the column
// order of the positional layout.
var TemplateHeaders = []string{
	"S.No", "Provision Month", "ATM BNA ID", "Docket No", "Bank Name",
	"From Location", "From State", "To Location", "To State", "Business Group",
	"Mode of Bill", "Type of Movement", "Assets Service Description", "Total Cost", "Hold",
	"Deduction", "Final Amount", "Per Asset Cost", "Remarks", "Internal Ref",
	"Assets Delivery Pending", "Reason for Additional Charges", "Pick Up Date", "Status", "Date",
	"Vendor Name", "Freight Category", "Project", "Invoice No", "Billing Month",
	"Billing", "Delivery Date", "Amount Received",
}

// WriteTemplate writes an empty upload workbook containing only the header row.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	row := make([]interface{}, len(TemplateHeaders))
	for i, h := range TemplateHeaders {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write template header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze template header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
