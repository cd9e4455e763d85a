// Package sync implements the lineup synchronization domain logic: deciding
// when a festival's lineup needs to be re-fetched and executing the
// fetch-classify-merge pipeline when it does. Scheduling lives in the
// coordinator subpackage.
package sync
