// Package testsupport builds temp-dir dataset layouts and stub binaries for
// package tests.
package testsupport
