package access

import "strings"

// ResourceKind tipo de recurso protegido.
type ResourceKind string

const (
	KindPage   ResourceKind = "page"
	KindAction ResourceKind = "action"
)

// ParseKind valida el tipo de recurso.
func ParseKind(s string) (ResourceKind, bool) {
	k := ResourceKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindPage, KindAction:
		return k, true
	}
	return "", false
}

// Resource describe qué páginas/acciones exige una ruta. Campos vacíos no se evalúan.
type Resource struct {
	Page   string
	Action string
}

// Page atajo para una ruta de solo lectura.
func Page(name string) Resource { return Resource{Page: name} }

// Action atajo para una ruta que muta datos.
func Action(name string) Resource { return Resource{Action: name} }

// CatalogEntry regla por defecto del catálogo incorporado.
type CatalogEntry struct {
	Kind    ResourceKind
	Key     string
	MinRole Role
}

// Páginas y acciones por módulo del back-office.
var (
	inventoryPages   = []string{"inventory_metrics", "storage_bins", "expired_items", "items", "stock_records", "expiry_tracked_items"}
	inventoryActions = []string{
		"create_storage_bin", "create_item", "create_stock_record", "create_expiry_tracked_item",
		"update_storage_bin", "update_item", "update_stock_record", "update_expiry_tracked_item",
		"delete_item", "delete_storage_bin", "delete_stock_record", "delete_expiry_tracked_item",
		"create_location_event",
	}

	procurementPages   = []string{"requisitions", "purchase_orders", "po_items", "receiving", "goods_receipts", "vendors"}
	procurementActions = []string{
		"create_requisition", "approve_requisition", "create_purchase_order", "approve_purchase_order",
		"create_po_item", "create_receiving", "create_goods_receipt", "add_vendor", "delete_vendor",
		"update_requisition", "delete_requisition", "update_purchase_order", "delete_purchase_order",
		"update_po_item", "delete_po_item", "update_receiving", "delete_receiving",
		"update_goods_receipt", "delete_goods_receipt",
	}

	receiptPages   = []string{"receipt_archive", "stock_receipts", "signing_receipts"}
	receiptActions = []string{"create_receipt", "create_stock_receipt", "create_signing_receipt"}

	financePages   = []string{"finance_categories", "finance_transactions", "finance_overview"}
	financeActions = []string{
		"create_finance_category", "create_finance_transaction",
		"update_finance_category", "delete_finance_category",
		"update_finance_transaction", "delete_finance_transaction",
	}

	rentalsPages   = []string{"rentals_active", "rentals_equipment", "rentals_payments"}
	rentalsActions = []string{"create_rental", "update_rental", "delete_rental", "create_equipment", "create_payment"}

	analyticsPages   = []string{"analytics_dwell", "analytics_eoq", "analytics_stock"}
	analyticsActions = []string{"create_dwell", "create_eoq", "create_stock_analytics"}

	productDocumentationPages   = []string{"product_documentation", "product_inflow", "product_outflow"}
	productDocumentationActions = []string{
		"create_product_inflow", "update_product_inflow", "delete_product_inflow",
		"create_product_outflow", "update_product_outflow", "delete_product_outflow",
	}

	warehousePages   = []string{"warehouse"}
	warehouseActions = []string{"create_warehouse_item", "update_warehouse_item", "delete_warehouse_item"}

	accountActions = []string{"generate_api_key", "view_api_key", "delete_api_key"}
)

// Excepciones al rol por defecto (staff).
var catalogOverrides = map[string]Role{
	"product_documentation":  RoleFinanceManager,
	"warehouse":              RoleFinanceManager,
	"delete_product_inflow":  RoleAdmin,
	"delete_product_outflow": RoleAdmin,
	"generate_api_key":       RoleAdmin,
	"view_api_key":           RoleAdmin,
	"delete_api_key":         RoleAdmin,
}

// AllPages todas las páginas conocidas.
func AllPages() []string {
	return concat(inventoryPages, procurementPages, receiptPages, financePages,
		rentalsPages, analyticsPages, productDocumentationPages, warehousePages)
}

// AllActions todas las acciones conocidas.
func AllActions() []string {
	return concat(inventoryActions, procurementActions, receiptActions, financeActions,
		rentalsActions, analyticsActions, productDocumentationActions, warehouseActions, accountActions)
}

// Catalog devuelve el catálogo incorporado con el rol mínimo por defecto de cada recurso.
func Catalog() []CatalogEntry {
	pages, actions := AllPages(), AllActions()
	out := make([]CatalogEntry, 0, len(pages)+len(actions))
	for _, p := range pages {
		out = append(out, CatalogEntry{Kind: KindPage, Key: p, MinRole: defaultRoleFor(p)})
	}
	for _, a := range actions {
		out = append(out, CatalogEntry{Kind: KindAction, Key: a, MinRole: defaultRoleFor(a)})
	}
	return out
}

func defaultRoleFor(key string) Role {
	if r, ok := catalogOverrides[key]; ok {
		return r
	}
	return LowestRole()
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
