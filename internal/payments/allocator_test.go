package payments

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateMixedTagsSplitsByRatio(t *testing.T) {
	lines := []Line{
		{Amount: 100, Tag: TagPaid},
		{Amount: 200, Tag: TagToPay},
	}

	split := Allocate(lines, 354)

	require.Equal(t, 118.0, split.Paid)
	require.Equal(t, 236.0, split.Pending)
	require.Equal(t, StatusPartial, split.Status)
}

func TestAllocateAllPaid(t *testing.T) {
	split := Allocate([]Line{{Amount: 50, Tag: TagPaid}}, 59)

	require.Equal(t, 59.0, split.Paid)
	require.Equal(t, 0.0, split.Pending)
	require.Equal(t, StatusPaid, split.Status)
}

func TestAllocateAllToPay(t *testing.T) {
	split := Allocate([]Line{{Amount: 50, Tag: TagToPay}}, 59)

	require.Equal(t, 0.0, split.Paid)
	require.Equal(t, 59.0, split.Pending)
	require.Equal(t, StatusUnpaid, split.Status)
}

func TestAllocateUntaggedValueIsOutstanding(t *testing.T) {
	split := Allocate([]Line{{Amount: 75, Tag: TagNone}}, 88.5)

	require.Equal(t, 0.0, split.Paid)
	require.Equal(t, 88.5, split.Pending)
	require.Equal(t, StatusUnpaid, split.Status)
}

func TestAllocateNoLines(t *testing.T) {
	split := Allocate(nil, 120)

	require.Equal(t, 0.0, split.Paid)
	require.Equal(t, 120.0, split.Pending)
	require.Equal(t, StatusUnpaid, split.Status)
}

func TestAllocateAlwaysSumsToGrandTotal(t *testing.T) {
	cases := []struct {
		name       string
		lines      []Line
		grandTotal float64
	}{
		{"mixed thirds", []Line{{100, TagPaid}, {200, TagToPay}}, 354},
		{"mixed uneven", []Line{{33, TagPaid}, {67, TagToPay}, {10, TagNone}}, 117.13},
		{"tiny total", []Line{{1, TagPaid}, {1, TagToPay}}, 1},
		{"zero total", []Line{{10, TagPaid}, {10, TagToPay}}, 0},
		{"all none", []Line{{10, TagNone}}, 42.42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			split := Allocate(tc.lines, tc.grandTotal)
			require.Equal(t, tc.grandTotal, split.Paid+split.Pending)
		})
	}
}

func TestStatusFor(t *testing.T) {
	require.Equal(t, StatusPaid, StatusFor(100, 100))
	require.Equal(t, StatusPaid, StatusFor(120, 100))
	require.Equal(t, StatusPartial, StatusFor(50, 100))
	require.Equal(t, StatusUnpaid, StatusFor(0, 100))
	require.Equal(t, StatusPaid, StatusFor(0, 0))
}

func TestTaxRateFor(t *testing.T) {
	allToPay := []Line{{100, TagToPay}, {50, TagToPay}}
	require.Equal(t, TaxRates{IGST: 18}, TaxRateFor(allToPay))

	allPaid := []Line{{100, TagPaid}}
	require.Equal(t, TaxRates{CGST: 9, SGST: 9}, TaxRateFor(allPaid))

	mixed := []Line{{100, TagPaid}, {50, TagToPay}}
	require.Equal(t, TaxRates{CGST: 9, SGST: 9}, TaxRateFor(mixed))

	untagged := []Line{{100, TagNone}}
	require.Equal(t, TaxRates{CGST: 9, SGST: 9}, TaxRateFor(untagged))
}

func TestRound2(t *testing.T) {
	require.Equal(t, 118.35, Round2(118.345))
	require.Equal(t, 0.0, Round2(0.004))
	require.Equal(t, 100.0, Round2(99.999))
}
