// Package reconcile computes and applies the minimal add/update/delete set
// needed to make the remote domain value table match a locally edited one.
//
// Reconciliation works on exactly one field at a time and keys records by
// their domain value, string-normalized but otherwise untouched: values that
// differ in case or surrounding whitespace are distinct keys, so visually
// similar codes are never silently merged. The remote store's real primary
// key (OBJECTID) is carried along on updates but plays no role in diffing.
//
// # Plan / Apply Split
//
// BuildPlan is pure: given the current remote rows and the edited table it
// produces a Plan with adds, updates and one delete predicate. The Engine
// re-fetches current rows immediately before planning so the plan never acts
// on stale identifiers, then applies adds, updates and the delete strictly
// in that order as separate remote calls. There is no cross-call transaction:
// a failure mid-sequence leaves earlier steps committed, surfaced as a
// PartialApplyError so callers know to re-fetch before retrying.
//
// Concurrent editors are not guarded against; the remote record set carries
// no version tokens, so two overlapping reconciliations race. Unresolved by
// design, not last-write-wins by intent.
package reconcile
