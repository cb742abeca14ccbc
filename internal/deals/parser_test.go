package deals

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

var sampleReport = []string{
	"All Deals Report PROCESSED",
	"1 - 1000001 DOE, JANE  ST100  2,500.00  300.00  2,500.00  300.00",
	"01/15/24 SMITH,BOB JONES,AMY New Retail 12 500.00 1200",
	"01/16/24 2023 Ford Motor Co 250.00 75.5",
	"finance LEE,TOM F-150 XLT 400.00 899.00",
	"y KIM,ANN 45000.00 2,000.00 1,100.00 3,100.00",
	"Trade: 2019 Ford F150",
	"Duebill 500.00",
	"2 - 1000002 ROE, RICK  ST200  100.00  -50.00",
	"Totals and Averages",
	"Count 2",
	"Grand Total 2,600.00",
	"Springfield Motors",
	"3 - 1000003 AFTER, TOTALS  ST300  1.00  2.00",
}

func TestMatchHeader(t *testing.T) {
	rec, ok := MatchHeader("3 - 1234567 SMITH, JOHN  AB1234  1,200.00  50.00 extra", Context{})
	require.True(t, ok)

	assert.Equal(t, "3", rec.Get(FieldCount))
	assert.Equal(t, "1234567", rec.Get(FieldDealNumber))
	assert.Equal(t, "SMITH, JOHN", rec.Get(FieldCustomer))
	assert.Equal(t, "AB1234", rec.Get(FieldStock))
	assert.Equal(t, "1,200.00", rec.Get(FieldVehicleGross))
	assert.Equal(t, "50.00", rec.Get(FieldFinanceReserve))
	assert.Equal(t, "0.00", rec.Get(FieldSalesRunning), "fewer than four amounts")
	assert.Len(t, rec.Fields, len(Schema))
}

func TestMatchHeaderRunningTotals(t *testing.T) {
	rec, ok := MatchHeader("7 - 7654321 DOE, JANE  X1  10.00  20.00  30.00  -40.5 55.00", Context{Status: "Pending", Location: "North"})
	require.True(t, ok)

	assert.Equal(t, "Pending", rec.Get(FieldStatus))
	assert.Equal(t, "North", rec.Get(FieldLocation))
	assert.Equal(t, "10.00", rec.Get(FieldVehicleGross))
	assert.Equal(t, "20.00", rec.Get(FieldFinanceReserve))
	assert.Equal(t, "30.00", rec.Get(FieldSalesRunning))
	assert.Equal(t, "55.00", rec.Get(FieldFinanceRunning))
}

func TestMatchHeaderRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"Totals and Averages",
		"3 - 123456 SHORT NUMBER  AB1  1.00  2.00",
		"3 - 1234567 NO AMOUNTS  AB1",
		"3 - 1234567 ONE AMOUNT  AB1  1.00",
		"x 3 - 1234567 LEADING TEXT  AB1  1.00  2.00",
	} {
		_, ok := MatchHeader(line, Context{})
		assert.False(t, ok, "line %q", line)
	}
}

func TestExtractContext(t *testing.T) {
	ctx := ExtractContext(sampleReport, DefaultOptions())
	assert.Equal(t, "Processed", ctx.Status)
	assert.Equal(t, "Springfield Motors", ctx.Location)
}

func TestExtractContextWindows(t *testing.T) {
	opts := DefaultOptions()

	lines := make([]string, 0, 30)
	for i := 0; i < opts.StatusWindow; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	lines = append(lines, "Status pending")
	assert.Empty(t, ExtractContext(lines, opts).Status, "status beyond the window")

	lines[opts.StatusWindow-1] = "status: completed"
	assert.Equal(t, "Completed", ExtractContext(lines, opts).Status)

	farther := []string{"Totals and Averages", "1", "2", "3", "4", "5", "6", "7", "8", "Too Far"}
	assert.Empty(t, ExtractContext(farther, opts).Location)

	inside := []string{"Totals and Averages", "1", "2", "3", "4", "5", "6", "7", "Just Inside"}
	assert.Equal(t, "Just Inside", ExtractContext(inside, opts).Location)

	assert.Equal(t, Context{}, ExtractContext(nil, opts))
}

func TestParseStrict(t *testing.T) {
	res := NewParser(DefaultOptions()).ParseStrict(sampleReport)

	require.Len(t, res.Records, 2)
	assert.Equal(t, types.StrategyStrict, res.Strategy)
	assert.Equal(t, "Processed", res.Status)
	assert.Equal(t, "Springfield Motors", res.Location)

	first := res.Records[0]
	want := map[string]string{
		FieldStatus:          "Processed",
		FieldLocation:        "Springfield Motors",
		FieldCount:           "1",
		FieldDealNumber:      "1000001",
		FieldCustomer:        "DOE, JANE",
		FieldStock:           "ST100",
		FieldVehicleGross:    "2,500.00",
		FieldFinanceReserve:  "300.00",
		FieldAccountingDate:  "01/15/24",
		FieldSalesperson1:    "SMITH,BOB",
		FieldSalesperson2:    "JONES,AMY",
		FieldNewUsed:         "New",
		FieldType:            "Retail",
		FieldDays:            "12",
		FieldRebates:         "500.00",
		FieldServiceContract: "1,200.00",
		FieldSaleDate:        "01/16/24",
		FieldYear:            "2023",
		FieldMake:            "Ford Motor Co",
		FieldIncentives:      "250.00",
		FieldCreditInsurance: "75.50",
		FieldDealType:        "Finance",
		FieldSalesManager:    "LEE,TOM",
		FieldModel:           "F-150 XLT",
		FieldHoldback:        "400.00",
		FieldAddOns:          "899.00",
		FieldAccountingKeyed: "Y",
		FieldFinanceManager:  "KIM,ANN",
		FieldSalePrice:       "45,000.00",
		FieldSalesGross:      "2,000.00",
		FieldFinanceGross:    "1,100.00",
		FieldGrandTotal:      "3,100.00",
		FieldSalesRunning:    "2,500.00",
		FieldFinanceRunning:  "300.00",
		FieldTradeInfo:       "Trade: 2019 Ford F150",
		FieldDuebill:         "Duebill 500.00",
	}
	assert.Equal(t, want, first.Fields)
	assert.Equal(t, 2, first.SourceLine)

	second := res.Records[1]
	assert.Equal(t, "2", second.Get(FieldCount))
	assert.Equal(t, "-50.00", second.Get(FieldFinanceReserve))
	assert.Equal(t, "0", second.Get(FieldDays))
	assert.Empty(t, second.Get(FieldTradeInfo))
	assert.Len(t, second.Fields, len(Schema))
}

func TestParseStrictTrailerStopsBeforeNextHeader(t *testing.T) {
	lines := []string{
		"1 - 1111111 FIRST, ONE  A1  1.00  2.00",
		"x", "x", "x", "x",
		"Trade: 2019 Ford F150",
		"Duebill 500.00",
		"2 - 2222222 SECOND, TWO  B2  3.00  4.00",
	}
	res := NewParser(DefaultOptions()).ParseStrict(lines)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Trade: 2019 Ford F150", res.Records[0].Get(FieldTradeInfo))
	assert.Equal(t, "Duebill 500.00", res.Records[0].Get(FieldDuebill))
	assert.Equal(t, "2222222", res.Records[1].Get(FieldDealNumber))
	assert.Empty(t, res.Records[1].Get(FieldTradeInfo))
}

func TestParseStrictTrailerStopsAtUnrelatedLine(t *testing.T) {
	lines := []string{
		"1 - 1111111 FIRST, ONE  A1  1.00  2.00",
		"x", "x", "x", "x",
		"an unrelated footer",
		"Trade: belongs to nobody",
	}
	res := NewParser(DefaultOptions()).ParseStrict(lines)

	require.Len(t, res.Records, 1)
	assert.Empty(t, res.Records[0].Get(FieldTradeInfo))
}

func TestParseStrictShortBlock(t *testing.T) {
	lines := []string{
		"1 - 1111111 FIRST, ONE  A1  1.00  2.00",
		"01/02/24 Used",
	}
	res := NewParser(DefaultOptions()).ParseStrict(lines)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "01/02/24", rec.Get(FieldAccountingDate))
	assert.Equal(t, "Used", rec.Get(FieldNewUsed))
	assert.Equal(t, "0.00", rec.Get(FieldGrandTotal))
}

func TestParseStrictDegenerate(t *testing.T) {
	p := NewParser(DefaultOptions())

	for _, lines := range [][]string{
		nil,
		{},
		{"nothing", "to", "see", "here"},
		{"Totals and Averages", "1 - 1111111 FIRST, ONE  A1  1.00  2.00"},
	} {
		res := p.ParseStrict(lines)
		assert.True(t, res.Empty())
		assert.Equal(t, types.StrategyNone, res.Strategy)
	}
}

func TestRepairCounts(t *testing.T) {
	var records []types.Record
	for _, c := range []string{"5", "bad", "7", ""} {
		rec := types.NewRecord(Schema)
		rec.Set(FieldCount, c)
		records = append(records, rec)
	}

	RepairCounts(records)

	var got []string
	for _, rec := range records {
		got = append(got, rec.Get(FieldCount))
	}
	assert.Equal(t, []string{"5", "2", "7", "4"}, got)
}

func TestParseFallsBackToLoose(t *testing.T) {
	doc := types.NewDocument([]string{"Deal 12 – 7654321 JANE DOE XY999", "LOCATION #: 4"})
	res := NewSource(DefaultOptions()).Parse(doc)

	require.Len(t, res.Records, 1)
	assert.Equal(t, types.StrategyLoose, res.Strategy)
	assert.Equal(t, "Location 4", res.Location)
	assert.Equal(t, "JANE DOE", res.Records[0].Get(FieldCustomer))
	assert.Equal(t, "XY999", res.Records[0].Get(FieldStock))
}

func TestParseDegenerate(t *testing.T) {
	src := NewSource(DefaultOptions())

	for _, doc := range []types.Document{
		types.NewDocument(nil),
		types.NewDocument([]string{"", "   "}),
		types.NewDocument([]string{"no deals in this document", "42"}),
	} {
		assert.NotPanics(t, func() {
			res := src.Parse(doc)
			assert.True(t, res.Empty())
			assert.Equal(t, types.StrategyNone, res.Strategy)
		})
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	p := NewParser(Options{StatusWindow: 5})
	assert.Equal(t, Options{StatusWindow: 5, LocationLookahead: 8, ProximityWindow: 500}, p.Options())
}

func TestExtractContextZeroOptions(t *testing.T) {
	want := ExtractContext(sampleReport, DefaultOptions())

	assert.Equal(t, want, ExtractContext(sampleReport, Options{}))
	assert.NotPanics(t, func() {
		got := ExtractContext(sampleReport, Options{StatusWindow: -1, LocationLookahead: -3})
		assert.Equal(t, want, got)
	})
}

func TestParseStrictTotalsInsideBlock(t *testing.T) {
	lines := []string{
		"All Deals Report Pending",
		"4 - 4000004 LAST, DEAL  ST400  900.00  100.00",
		"02/01/24 SMITH,BOB New Retail 3",
		"Totals and Averages",
		"Count 1",
		"Riverside Auto",
		"5 - 5000005 NEVER, READ  ST500  1.00  2.00",
	}

	res := NewParser(DefaultOptions()).ParseStrict(lines)
	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "4000004", rec.Get(FieldDealNumber))
	assert.Equal(t, "02/01/24", rec.Get(FieldAccountingDate))
	assert.Equal(t, "", rec.Get(FieldSaleDate), "vehicle line is past the marker")
	assert.Equal(t, "Riverside Auto", rec.Get(FieldLocation))
	assert.Equal(t, "Pending", rec.Get(FieldStatus))
}

func TestParseConcurrent(t *testing.T) {
	p := NewParser(DefaultOptions())
	want := p.ParseStrict(sampleReport)
	doc := types.NewDocument(sampleReport)

	var wg sync.WaitGroup
	results := make([]types.Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = p.ParseStrict(sampleReport)
			} else {
				results[i] = p.Parse(doc)
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, want, got, "goroutine %d", i)
	}
}
