// Package testsupport holds helpers shared by package tests: temp-dir backed
// configs, stubbed tool binaries on PATH, and sized fixture files.
package testsupport
