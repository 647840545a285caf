// Package canon produces canonical JSON and content fingerprints.
//
// Canonical JSON follows RFC 8785 for the value types the ledger stores:
// strings (NFC normalized), integers, booleans, arrays and objects. Object
// keys are sorted by UTF-16 code units. Floats and null are rejected so that
// equal values always serialize to equal bytes; callers format reals as
// strings.
package canon
