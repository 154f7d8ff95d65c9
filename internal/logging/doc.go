// Package logging provides structured logging helpers built on log/slog.
//
// It keeps attribute names consistent across packages and makes sure
// identifiers that should not appear in logs are masked:
//
//   - user ids and emails are hashed with [UserHash];
//   - API tokens are reduced to a length with [SanitizeToken];
//   - IP addresses in hosts and error strings are redacted.
//
// Example:
//
//	logger := logging.WithTool(slog.Default(), "gateway_rules_list")
//	logger.Info("tool completed",
//	    logging.AccountID(accountID),
//	    logging.UserHash(userID))
//
// Account ids are not secret and are logged verbatim. Credentials are never
// logged.
package logging
