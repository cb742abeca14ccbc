package deals

import "github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"

// Field names of an All Deals record, in export order.
const (
	FieldStatus          = "Deal Status"
	FieldLocation        = "Location"
	FieldCount           = "Count"
	FieldDealNumber      = "Deal #"
	FieldCustomer        = "Customer Name"
	FieldStock           = "Stock"
	FieldVehicleGross    = "Veh. Gross"
	FieldFinanceReserve  = "Fin. Reserve"
	FieldAccountingDate  = "Accounting Date"
	FieldSalesperson1    = "Salesperson 1"
	FieldSalesperson2    = "Salesperson 2"
	FieldNewUsed         = "N/U"
	FieldType            = "Type"
	FieldDays            = "Days"
	FieldRebates         = "Rebates to Dlr"
	FieldServiceContract = "Svc Conts"
	FieldSaleDate        = "Sale Date"
	FieldYear            = "Year"
	FieldMake            = "Make"
	FieldIncentives      = "Incentives"
	FieldCreditInsurance = "Credit Ins"
	FieldDealType        = "Deal Type"
	FieldSalesManager    = "Sales Manager"
	FieldModel           = "Model"
	FieldHoldback        = "Holdback"
	FieldAddOns          = "ProPack+GAP+LSI"
	FieldAccountingKeyed = "Accounting Keyed"
	FieldFinanceManager  = "Finance Manager"
	FieldSalePrice       = "Sale Price"
	FieldSalesGross      = "Sales Dept Grs"
	FieldFinanceGross    = "Finance Dept Grs"
	FieldGrandTotal      = "Grand Total"
	FieldSalesRunning    = "Sales Dept Running"
	FieldFinanceRunning  = "Finance Dept Running"
	FieldTradeInfo       = "Trade Info"
	FieldDuebill         = "Duebill"
)

const datePattern = `^\d{2}/\d{2}/\d{2}$`

// Schema is the fixed column set of the All Deals report.
var Schema = types.Schema{
	{Name: FieldStatus, Kind: types.KindText},
	{Name: FieldLocation, Kind: types.KindText},
	{Name: FieldCount, Kind: types.KindIdentifier, Pattern: `^\d+$`},
	{Name: FieldDealNumber, Kind: types.KindIdentifier, Pattern: `^\d{7}$`},
	{Name: FieldCustomer, Kind: types.KindText},
	{Name: FieldStock, Kind: types.KindText},
	{Name: FieldVehicleGross, Kind: types.KindAmount},
	{Name: FieldFinanceReserve, Kind: types.KindAmount},
	{Name: FieldAccountingDate, Kind: types.KindDate, Pattern: datePattern},
	{Name: FieldSalesperson1, Kind: types.KindText},
	{Name: FieldSalesperson2, Kind: types.KindText},
	{Name: FieldNewUsed, Kind: types.KindText},
	{Name: FieldType, Kind: types.KindText},
	{Name: FieldDays, Kind: types.KindCounter},
	{Name: FieldRebates, Kind: types.KindAmount},
	{Name: FieldServiceContract, Kind: types.KindAmount},
	{Name: FieldSaleDate, Kind: types.KindDate, Pattern: datePattern},
	{Name: FieldYear, Kind: types.KindText},
	{Name: FieldMake, Kind: types.KindText},
	{Name: FieldIncentives, Kind: types.KindAmount},
	{Name: FieldCreditInsurance, Kind: types.KindAmount},
	{Name: FieldDealType, Kind: types.KindText},
	{Name: FieldSalesManager, Kind: types.KindText},
	{Name: FieldModel, Kind: types.KindText},
	{Name: FieldHoldback, Kind: types.KindAmount},
	{Name: FieldAddOns, Kind: types.KindAmount},
	{Name: FieldAccountingKeyed, Kind: types.KindText},
	{Name: FieldFinanceManager, Kind: types.KindText},
	{Name: FieldSalePrice, Kind: types.KindAmount},
	{Name: FieldSalesGross, Kind: types.KindAmount},
	{Name: FieldFinanceGross, Kind: types.KindAmount},
	{Name: FieldGrandTotal, Kind: types.KindAmount},
	{Name: FieldSalesRunning, Kind: types.KindAmount},
	{Name: FieldFinanceRunning, Kind: types.KindAmount},
	{Name: FieldTradeInfo, Kind: types.KindText},
	{Name: FieldDuebill, Kind: types.KindText},
}
