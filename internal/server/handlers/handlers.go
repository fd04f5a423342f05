// Package handlers adapts the ledger services to gin.
package handlers

// Handlers groups every HTTP adapter mounted by the router.
type Handlers struct {
	Auth      *AuthHandler
	Stock     *StockHandler
	Logs      *LogsHandler
	Warehouse *WarehouseHandler
}
