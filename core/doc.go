// Package core contains the credentials domain model, its wire mapping, and
// the asynchronous services that talk to the aggregation platform REST API.
// Transport, storage, and job adapters depend on this package; core must not
// depend on them.
package core
