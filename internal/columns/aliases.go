package columns

// Alias catalogue. Order inside a set does not matter for matching; the row's
// column order decides which column wins.
var (
	OrderID = NewAliasSet("Order ID", "OrderID", "Order Number", "Order No",
		"Receipt ID", "ReceiptID", "Receipt Number")

	// Summary revenue, in fallback order.
	NetAmount         = NewAliasSet("Order Net", "Net Order Amount", "Net Amount", "Net")
	TotalAmount       = NewAliasSet("Order Total", "Order Value", "Total", "Gross Amount", "Gross Sales", "Grand Total")
	AdjustedNetAmount = NewAliasSet("Adjusted Net Order Amount", "Adjusted Net Amount", "Adjusted Net")

	// PaymentNet is the net column of payment-ledger rows.
	PaymentNet = NewAliasSet("Net Amount", "Net", "Posted Net", "Order Net")

	// SummaryFees is the fixed allow-list of named fee columns.
	SummaryFees = NewAliasSet("Card Processing Fees", "Processing Fees", "Processing Fee",
		"Transaction Fee", "Transaction Fees", "Listing Fee", "Listing Fees",
		"Offsite Ads Fee", "Offsite Ads Fees", "Shipping Label Fee", "Regulatory Operating Fee",
		"Fees", "Fee", "Total Fees", "Marketplace Fee")
	AdjustedFees   = NewAliasSet("Adjusted Card Processing Fees", "Adjusted Fees", "Adjusted Processing Fees")
	RegulatoryFees = NewAliasSet("Regulatory Operating Fee", "Regulatory Fee", "ROF", "VAT Amount")

	// Payments-Sales detection: fee, gross or net money columns.
	PaymentMoney = NewAliasSet("Fees", "Fee", "Gross Amount", "Gross", "Net Amount", "Net",
		"Posted Gross", "Posted Fees", "Posted Net", "Order Net", "Order Total")

	ItemName  = NewAliasSet("Item Name", "Title", "Listing Title", "Product Name", "Product", "Item Title", "Item")
	SKU       = NewAliasSet("SKU", "Product SKU", "Item SKU", "Variant SKU")
	Size      = NewAliasSet("Size")
	Variation = NewAliasSet("Variations", "Variation", "Options", "Variant")
	Quantity  = NewAliasSet("Quantity", "Qty", "Units", "Quantity Sold")
	LineTotal = NewAliasSet("Item Total", "Line Total", "Line Item Total", "Total Price")
	UnitPrice = NewAliasSet("Price", "Unit Price", "Item Price", "ItemPrice", "Sale Price")
	ItemFees  = NewAliasSet("Fees", "Transaction Fee", "Transaction Fees", "Processing Fee", "Item Fees")
	Discount  = NewAliasSet("Discount Amount", "Discounts", "Discount", "Coupon Discount")

	OrderDate = NewAliasSet("Sale Date", "Order Date", "Date Paid", "Created At", "Purchase Date", "Date")
	StoreName = NewAliasSet("Shop Name", "Store Name", "Store", "Shop")
)

// Shipping-ledger fields.
var (
	LabelType        = NewAliasSet("Type")
	LabelDate        = NewAliasSet("Date", "Ship Date", "Created Date")
	LabelDescription = NewAliasSet("Description")
	LabelTotal       = NewAliasSet("Total", "Amount")
	LabelID          = NewAliasSet("Label ID", "LabelID", "Shipment ID")
	LabelBatchID     = NewAliasSet("Batch ID", "Batch")
	LabelCarrier     = NewAliasSet("Carrier")
	LabelService     = NewAliasSet("Service", "Service Level")
	LabelShipDate    = NewAliasSet("Ship Date", "Date", "Created Date")
	LabelToName      = NewAliasSet("Recipient Name", "To Name", "Ship To Name", "Recipient")
	LabelAddress1    = NewAliasSet("Address 1", "Address1", "Address Line 1", "Street")
	LabelCity        = NewAliasSet("City")
	LabelState       = NewAliasSet("State", "Province")
	LabelPostal      = NewAliasSet("Postal Code", "ZIP", "Zip Code", "Postcode")
	LabelCountry     = NewAliasSet("Country")
	LabelTracking    = NewAliasSet("Tracking Number", "Tracking", "Tracking #")
	LabelReference   = NewAliasSet("Reference", "Reference #", "Reference Number", "Order Reference")
	LabelNotes       = NewAliasSet("Notes", "Note", "Memo")
	LabelWeight      = NewAliasSet("Weight", "Weight (oz)")
	LabelDimensions  = NewAliasSet("Dimensions", "Package Dimensions")
	LabelCurrency    = NewAliasSet("Currency")
	LabelStoreID     = NewAliasSet("Store ID", "Shop ID")
)
