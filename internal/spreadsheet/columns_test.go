package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "pickupdate", NormalizeHeader("Pick Up Date"))
	assert.Equal(t, "pickupdate", NormalizeHeader("Pickup-Date"))
	assert.Equal(t, "billingmonthnecessary", NormalizeHeader("Billing Month (necessary)"))
	assert.Equal(t, "atmbnaid", NormalizeHeader("ATM / BNA ID"))
}

func TestColumnsLookups(t *testing.T) {
	sheet := TextGrid([][]string{{"S.No", "Status", "Billing Month (necessary)", "Billing", "Status", "Pickup Date"}})
	cols := NewColumns(sheet)

	idx, ok := cols.Exact("status")
	assert.True(t, ok)
	assert.Equal(t, 1, idx, "first duplicate wins")

	idx, ok = cols.Prefix("billingmonth")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = cols.Prefix("billing", "billingmonth")
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = cols.Exact("vendorname")
	assert.False(t, ok)
}

func TestResolveFallsBackToPosition(t *testing.T) {
	cols := NewColumns(TextGrid([][]string{{"Col A", "Col B"}}))

	assert.Equal(t, 22, cols.Resolve(Field{Key: FieldPickupDate, Prefixes: []string{"pickupdate"}, Fallback: 22}))
}

func TestResolvePickupDateVariants(t *testing.T) {
	for _, header := range []string{"Pick Up Date", "Pickup Date", "PICKUP DATE (dd/mm)"} {
		cols := NewColumns(TextGrid([][]string{{"ATM ID", "Vendor", header}}))
		var pickup Field
		for _, f := range DefaultLayout() {
			if f.Key == FieldPickupDate {
				pickup = f
			}
		}
		assert.Equal(t, 2, cols.Resolve(pickup), header)
	}
}

func TestBillingStatusDoesNotMatchBillingMonth(t *testing.T) {
	layout := DefaultLayout()
	var billing Field
	for _, f := range layout {
		if f.Key == FieldBillingStatus {
			billing = f
		}
	}

	cols := NewColumns(TextGrid([][]string{{"Billing Month", "Billing Done"}}))
	assert.Equal(t, 1, cols.Resolve(billing))

	cols = NewColumns(TextGrid([][]string{{"Billing Month"}}))
	assert.Equal(t, 30, cols.Resolve(billing))
}

func TestLayoutWithFallback(t *testing.T) {
	base := DefaultLayout()
	custom := base.WithFallback(FieldVendorName, 3)

	for i := range custom {
		if custom[i].Key == FieldVendorName {
			assert.Equal(t, 3, custom[i].Fallback)
			assert.Equal(t, 25, base[i].Fallback)
		}
	}
}
