// Package testsupport holds fixtures shared by package tests: temp-directory
// configs, synthetic curve files, and small fakes for the classifier and the
// reference bank.
package testsupport
