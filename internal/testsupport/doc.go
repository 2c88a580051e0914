// Package testsupport holds shared test fixtures: temp-dir configs, a fake
// persistence API server, and small file helpers.
package testsupport
