// Package record provides the document model used by CRUD resources: a
// schemaless [Record], the [Store] contract with in-memory and PostgreSQL
// implementations, field validation, and a throttled integrity pass over a
// whole collection ([ValidateAll]).
//
// Stores are stateless per call. A missing record is reported as (nil, nil)
// by the lookup and removal methods so callers can tell "absent" from a
// storage failure.
package record
