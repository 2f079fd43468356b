// Package store provides the persistent tier of the result cache.
//
// A Store addresses JSON documents by (collection, key) and supports only
// Get and Set. Backends: Memory for tests and single-run tools, Redis, SQL
// through gorm (sqlite, postgres, mysql) and MongoDB. Open builds one from
// Config and wraps it in Guarded so an unreachable backend fails fast.
package store
