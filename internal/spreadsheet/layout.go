package spreadsheet

// FieldKey names a logical ImportRecord field.
type FieldKey string

const (
	FieldSerialNo                   FieldKey = "s_no"
	FieldProvisionMonth             FieldKey = "provision_month"
	FieldAssetSerial                FieldKey = "atm_bna_id"
	FieldDocketNo                   FieldKey = "docket_no"
	FieldBankName                   FieldKey = "bank_name"
	FieldFromLocation               FieldKey = "from_location"
	FieldFromState                  FieldKey = "from_state"
	FieldToLocation                 FieldKey = "to_location"
	FieldToState                    FieldKey = "to_state"
	FieldBusinessGroup              FieldKey = "business_group"
	FieldModeOfBill                 FieldKey = "mode_of_bill"
	FieldMovementType               FieldKey = "movement_type"
	FieldDescription                FieldKey = "description"
	FieldTotalCost                  FieldKey = "total_cost"
	FieldHold                       FieldKey = "hold"
	FieldDeduction                  FieldKey = "deduction"
	FieldFinalAmount                FieldKey = "final_amount"
	FieldPerAssetCost               FieldKey = "per_asset_cost"
	FieldAssetsDeliveryPending      FieldKey = "assets_delivery_pending"
	FieldReasonForAdditionalCharges FieldKey = "reason_for_additional_charges"
	FieldPickupDate                 FieldKey = "pickup_date"
	FieldStatus                     FieldKey = "status"
	FieldDate                       FieldKey = "date"
	FieldVendorName                 FieldKey = "vendor_name"
	FieldFreightCategory            FieldKey = "freight_category"
	FieldProject                    FieldKey = "project"
	FieldInvoiceNo                  FieldKey = "invoice_no"
	FieldBillingMonth               FieldKey = "billing_month"
	FieldBillingStatus              FieldKey = "billing_status"
	FieldDeliveryDate               FieldKey = "delivery_date"
	FieldAmountReceived             FieldKey = "amount_received"
)

// Field describes how to find one logical column: exact normalized names
// first, then prefixes (skipping headers that start with an excluded prefix),
// then the positional Fallback.
type Field struct {
	Key      FieldKey
	Exact    []string
	Prefixes []string
	Exclude  []string
	Fallback int
}

// Layout is the set of fields an extractor reads.
type Layout []Field

// DefaultLayout returns the header names in use today with the column
// positions of the original positional export as fallbacks.
func DefaultLayout() Layout {
	return Layout{
		{Key: FieldSerialNo, Exact: []string{"sno", "srno", "slno"}, Fallback: 0},
		{Key: FieldProvisionMonth, Prefixes: []string{"provisionmonth", "provision"}, Fallback: 1},
		{Key: FieldAssetSerial, Exact: []string{"atmid", "bnaid"}, Prefixes: []string{"atmbnaid", "atmbna"}, Fallback: 2},
		{Key: FieldDocketNo, Prefixes: []string{"docket"}, Fallback: 3},
		{Key: FieldBankName, Prefixes: []string{"bankname"}, Exact: []string{"bank"}, Fallback: 4},
		{Key: FieldFromLocation, Prefixes: []string{"fromlocation"}, Exact: []string{"from"}, Fallback: 5},
		{Key: FieldFromState, Prefixes: []string{"fromstate"}, Fallback: 6},
		{Key: FieldToLocation, Prefixes: []string{"tolocation"}, Exact: []string{"to"}, Fallback: 7},
		{Key: FieldToState, Prefixes: []string{"tostate"}, Fallback: 8},
		{Key: FieldBusinessGroup, Prefixes: []string{"businessgroup"}, Fallback: 9},
		{Key: FieldModeOfBill, Prefixes: []string{"modeofbill", "billmode"}, Fallback: 10},
		{Key: FieldMovementType, Prefixes: []string{"typeofmovement", "movementtype"}, Fallback: 11},
		{Key: FieldDescription, Prefixes: []string{"assetsservicedescription", "assetservicedescription", "description"}, Fallback: 12},
		{Key: FieldTotalCost, Prefixes: []string{"totalcost"}, Fallback: 13},
		{Key: FieldHold, Exact: []string{"hold"}, Fallback: 14},
		{Key: FieldDeduction, Prefixes: []string{"deduction"}, Fallback: 15},
		{Key: FieldFinalAmount, Prefixes: []string{"finalamount"}, Fallback: 16},
		{Key: FieldPerAssetCost, Prefixes: []string{"perassetcost", "vendorcost"}, Fallback: 17},
		{Key: FieldAssetsDeliveryPending, Prefixes: []string{"assetsdeliverypending", "deliverypending"}, Fallback: 20},
		{Key: FieldReasonForAdditionalCharges, Prefixes: []string{"reasonforadditional"}, Fallback: 21},
		{Key: FieldPickupDate, Prefixes: []string{"pickupdate", "pickup"}, Fallback: 22},
		{Key: FieldStatus, Exact: []string{"status", "assetstatus"}, Fallback: 23},
		{Key: FieldDate, Exact: []string{"date"}, Fallback: 24},
		{Key: FieldVendorName, Exact: []string{"vendor"}, Prefixes: []string{"vendorname"}, Fallback: 25},
		{Key: FieldFreightCategory, Prefixes: []string{"freightcategory", "freight"}, Fallback: 26},
		{Key: FieldProject, Exact: []string{"project"}, Fallback: 27},
		{Key: FieldInvoiceNo, Prefixes: []string{"invoiceno", "invoicenumber"}, Fallback: 28},
		{Key: FieldBillingMonth, Prefixes: []string{"billingmonth"}, Fallback: 29},
		{Key: FieldBillingStatus, Exact: []string{"billing", "billingstatus"}, Prefixes: []string{"billing"}, Exclude: []string{"billingmonth"}, Fallback: 30},
		{Key: FieldDeliveryDate, Prefixes: []string{"deliverydate"}, Fallback: 31},
		{Key: FieldAmountReceived, Prefixes: []string{"amountreceived"}, Fallback: 32},
	}
}

// WithFallback returns a copy of l with key's positional fallback replaced.
func (l Layout) WithFallback(key FieldKey, index int) Layout {
	out := make(Layout, len(l))
	copy(out, l)
	for i := range out {
		if out[i].Key == key {
			out[i].Fallback = index
		}
	}
	return out
}
