// Package repotest provides in-memory repositories with the same error
// contract as the MongoDB ones, for service and handler tests.
package repotest
