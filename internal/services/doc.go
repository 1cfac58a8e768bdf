// Package services provides shared error classification and context plumbing
// for components that talk to external collaborators (page fetcher, catalog,
// arbitration judges).
package services
