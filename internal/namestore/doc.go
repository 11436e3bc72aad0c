// Package namestore persists cleaned release titles as flat text files.
//
// Each list is one title per line, sorted and deduplicated. A companion
// "processed" ledger records titles already pushed to an external service so
// repeated runs only queue the remainder.
package namestore
