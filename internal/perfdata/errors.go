package perfdata

import "codeberg.org/mutker/perfmon/internal/errors"

const (
	// Configuration Errors
	ErrInvalidPath = errors.ErrorCode("perfdata_invalid_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("perfdata_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("perfdata_schema_validation_failed")
	ErrSchemaMismatch         = errors.ErrorCode("perfdata_schema_mismatch")
	ErrTransactionFailed      = errors.ErrorCode("perfdata_transaction_failed")

	// Storage Errors
	ErrStoreNotFound = errors.ErrorCode("perfdata_store_not_found")
	ErrStorageInit   = errors.ErrorCode("perfdata_storage_init_failed")
	ErrStorageAccess = errors.ErrorCode("perfdata_storage_access_failed")
	ErrStorageClose  = errors.ErrorCode("perfdata_storage_close_failed")

	// Record Errors
	ErrInvalidRecord = errors.ErrorCode("perfdata_invalid_record")
)
