// Package domain holds the core entities and ports of the Community Guardian
// backend: the Alert record, the SOS submission payload, and the interfaces
// between the ingestion service, the store, and the live broadcaster.
package domain
