// Package testutil provides deterministic fixtures shared by package tests:
// solid-color images, PNG files on disk, and fixed run IDs.
package testutil
