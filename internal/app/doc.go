// Package app contains the ingestion service that ties the alert store and
// the live broadcaster together under the write-before-broadcast contract.
package app
