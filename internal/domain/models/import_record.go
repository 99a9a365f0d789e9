package models

import "github.com/shopspring/decimal"

// ImportRecord is one spreadsheet row after column resolution and coercion.
// Empty strings and invalid decimals mean the cell was absent.
type ImportRecord struct {
	Row int

	SerialNo                   string
	ProvisionMonth             string
	AssetSerial                string
	DocketNo                   string
	BankName                   string
	FromLocation               string
	FromState                  string
	ToLocation                 string
	ToState                    string
	BusinessGroup              string
	ModeOfBill                 string
	MovementType               string
	Description                string
	TotalCost                  decimal.NullDecimal
	Hold                       decimal.NullDecimal
	Deduction                  decimal.NullDecimal
	FinalAmount                decimal.NullDecimal
	PerAssetCost               decimal.NullDecimal
	AssetsDeliveryPending      string
	ReasonForAdditionalCharges string
	PickupDate                 string
	Status                     string
	Date                       string
	VendorName                 string
	FreightCategory            string
	Project                    string
	InvoiceNo                  string
	BillingMonth               string
	BillingStatus              string
	DeliveryDate               string
	AmountReceived             string
	VendorEmail                string
}

// VendorRows summarises how many rows of a sheet named a vendor.
type VendorRows struct {
	Name     string `json:"name" bson:"name"`
	RowCount int    `json:"row_count" bson:"row_count"`
	Rows     []int  `json:"rows" bson:"rows"`
}
