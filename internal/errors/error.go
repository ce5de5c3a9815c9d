// Package errors provides custom error types for store-level operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrSaleNotFound = errors.New("sale not found")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
