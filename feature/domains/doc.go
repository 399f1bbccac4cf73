// Package domains exposes curation of per-field dropdown value lists.
//
// Domain values and their optional per-field configuration live in a remote
// feature server. The package resolves which layer or table of that server
// holds which record type, serves cached option lookups for form rendering,
// and routes edited tables (manual or CSV-imported) through the
// reconciliation engine.
//
// # Endpoints
//
//   - GET  /domains/fields        lists distinct field names plus field configs
//   - GET  /domains/:field        returns option values for one field
//   - PUT  /domains/:field        reconciles an edited table
//   - POST /domains/:field/import reconciles a CSV upload
//
// Option lookups are cached with a short TTL; reconciliation always works on
// a fresh snapshot and invalidates the cache after a successful apply.
package domains
