// Package config loads the password manager settings.
//
// Values come from three places, later ones winning:
//
//   - built-in defaults
//   - $PASSMGR_CONFIG_PATH/passmgr.yml (default /etc/passmgr/passmgr.yml)
//   - environment variables
//
// # Settings
//
//   - PASSWORD_HISTORY_LIFE: entries kept per user (required, no default)
//   - PASSWORD_EXPIRY_TIME: default expiry period in days (90)
//   - PASSMGR_LOG_LEVEL: logrus level (info)
//
// A malformed integer in the environment is kept and reported by Validate
// rather than ignored.
package config
