// Command passmgrctl manages password history and password expiry records.
//
// # Quick Start
//
//	export DATABASE_URL=postgres://postgres@localhost/passmgr?sslmode=disable
//	export PASSWORD_HISTORY_LIFE=5
//
//	# Create the schema
//	passmgrctl db migrate
//
//	# Record a password change for user 42
//	passmgrctl history record 42 '$2a$10$...'
//
//	# Set and read the expiry period
//	passmgrctl expiry set 42 90
//	passmgrctl expiry show 42
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - AUDIT_DATABASE_URL: optional database for audit messages
//   - PASSWORD_HISTORY_LIFE: history entries kept per user
//   - PASSWORD_EXPIRY_TIME: default days for expiry set
//   - PASSMGR_LOG_LEVEL: log level (debug, info, warn, error)
//   - PASSMGR_CONFIG_PATH: directory holding passmgr.yml
//
// Variables may also come from a .env file (see --env-file); values already
// set in the environment take precedence.
package main
