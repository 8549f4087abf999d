// Package inspect exposes read-only views of the configured accounts
// and their live calendars.
//
//   - GET /inspect/accounts: the configured accounts without credentials.
//   - GET /inspect/snapshot?account=X&days=N: a live window peek into
//     one account, partitioned into meetings and placeholders.
//
// The snapshot endpoint reads through the same loader the sync pass
// uses, so what it shows is exactly what the next pass will see.
package inspect
