// Package fetch retrieves mod page content over HTTP. Results are always
// best-effort: blocked and unreachable pages come back as classified outcomes
// with whatever body was available, never as errors that escape the fetcher.
package fetch
