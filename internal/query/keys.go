package query

import (
	"net/url"
	"strconv"
)

// Query keys follow "resource/operation?params". Invalidation works on key
// prefixes, so all variants of one operation share a prefix.

func KeyMedicines(category, search string) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	return withParams("inventory/medicines", q)
}

func KeyMedicine(id int) string {
	return "inventory/medicine?id=" + strconv.Itoa(id)
}

func KeyBatches(medicineID int) string {
	return "inventory/batches?medicine_id=" + strconv.Itoa(medicineID)
}

func KeyStockLevels(lowStockOnly bool) string {
	return "inventory/stock-levels?low_stock_only=" + strconv.FormatBool(lowStockOnly)
}

func KeyInventoryCategories() string { return "inventory/categories" }

func KeyPriceComparison(search string) string {
	q := url.Values{}
	q.Set("query", search)
	return withParams("inventory/price-comparison", q)
}

func KeyAnalysisReport() string { return "inventory/analysis-report" }

func KeyForecast(medicineID, horizonDays int) string {
	q := url.Values{}
	q.Set("medicine_id", strconv.Itoa(medicineID))
	q.Set("horizon_days", strconv.Itoa(horizonDays))
	return withParams("forecasting/medicine", q)
}

func KeyReorderSuggestions(category string, criticalOnly bool) string {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	q.Set("critical_only", strconv.FormatBool(criticalOnly))
	return withParams("forecasting/reorder-suggestions", q)
}

func KeyAlerts(alertType, severity string, acknowledged *bool) string {
	q := url.Values{}
	if alertType != "" {
		q.Set("alert_type", alertType)
	}
	if severity != "" {
		q.Set("severity", severity)
	}
	if acknowledged != nil {
		q.Set("acknowledged", strconv.FormatBool(*acknowledged))
	}
	return withParams("alerts/list", q)
}

func KeyAlertsUnacknowledged() string { return "alerts/unacknowledged" }
func KeyAlertStats() string           { return "alerts/stats" }

func KeySuppliers(activeOnly bool) string {
	return "suppliers/list?active_only=" + strconv.FormatBool(activeOnly)
}

func KeyPurchaseOrders(supplierID int, status string) string {
	q := url.Values{}
	if supplierID != 0 {
		q.Set("supplier_id", strconv.Itoa(supplierID))
	}
	if status != "" {
		q.Set("status", status)
	}
	return withParams("suppliers/purchase-orders", q)
}

func KeyOrders() string { return "orders/list" }

func KeyDashboardStats() string      { return "dashboard/stats" }
func KeyExpiryTimeline() string      { return "dashboard/expiry-timeline" }
func KeyInventoryByCategory() string { return "dashboard/inventory-by-category" }

func KeySalesTrends(days int) string {
	return "dashboard/sales-trends?days=" + strconv.Itoa(days)
}

func KeyTopMedicines(limit int, by string) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("by", by)
	return withParams("dashboard/top-medicines", q)
}

func KeyWasteAnalytics(start, end, category string) string {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if category != "" {
		q.Set("category", category)
	}
	return withParams("waste/analytics", q)
}

func KeyWasteTopItems(limit int) string {
	return "waste/top-items?limit=" + strconv.Itoa(limit)
}

func KeyWasteByCategory() string { return "waste/by-category" }

// Invalidation groups: which key prefixes a mutation dirties.

// AfterInventoryUpload covers a successful bulk import: catalog, stock,
// dashboard aggregates and alerts all change.
func AfterInventoryUpload() []string {
	return []string{"inventory/", "dashboard/", "alerts/", "forecasting/"}
}

// AfterAlertAcknowledge covers acknowledging an alert.
func AfterAlertAcknowledge() []string {
	return []string{"alerts/"}
}

// AfterSupplierChange covers supplier create/update/delete.
func AfterSupplierChange() []string {
	return []string{"suppliers/"}
}

// AfterPurchaseOrder covers placing a purchase order.
func AfterPurchaseOrder() []string {
	return []string{"suppliers/purchase-orders"}
}

// AfterOrderCreate covers placing a prescription order.
func AfterOrderCreate() []string {
	return []string{"orders/"}
}

// AfterBatchStatusChange covers marking a batch expired or damaged.
func AfterBatchStatusChange() []string {
	return []string{"inventory/", "waste/", "dashboard/"}
}

func withParams(op string, q url.Values) string {
	if len(q) == 0 {
		return op
	}
	return op + "?" + q.Encode()
}
