package constants

// File names shared by the stages. Together with the column names they are
// the hand-off protocol between processes.
const (
	ExchangeRatesFile = "exchange_rates.csv"
	OrdersFile        = "orders.csv"
	OrderItemsFile    = "order_items.csv"
	CustomersFile     = "customers.csv"
	ProductsFile      = "products.csv"
	StoresFile        = "stores.csv"
	StaffsFile        = "staffs.csv"

	DimCustomerFile = "dim_customer.csv"
	DimProductFile  = "dim_product.csv"
	DimStoreFile    = "dim_store.csv"
	DimStaffFile    = "dim_staff.csv"
	DimDateFile     = "dim_date.csv"
	FactSalesFile   = "fact_sales.csv"

	TimeSeriesChart   = "1_time_series_analysis.png"
	TopNChart         = "2_top_n_performance.png"
	DistributionChart = "3_distribution_analysis.png"
	GeographyChart    = "4_geographical_analysis.png"
)

// Lineage columns stamped on every extracted and cleaned row.
const (
	ExtractedAtColumn = "extracted_at"
	DataSourceColumn  = "data_source"
)

const (
	// RunIDEnv carries the driver's run id to the stage processes.
	RunIDEnv = "ETL_RUN_ID"

	TmpCSVFile = "retail_etl_*.csv"

	QualityReportPrefix = "quality_report_"
	QualityReportLayout = "20060102_150405"
)
