// retailsync сверяет розничные транзакции со складскими остатками
// и загружает результат в базу данных.
//
// Usage:
//
//	retailsync run --retail Retail.csv --warehouse Warehouse.csv
//	retailsync verify
//	retailsync preview --limit 5
//	retailsync serve --port 9999
//	retailsync generate --retail-rows 1000
//
// @title retailsync API
// @version 1.0
// @description Read-only access to reconciled retail transactions, warehouse inventory and the product catalog.
// @license.name Internal Use Only
// @host localhost:9999
// @BasePath /
// @schemes http
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
