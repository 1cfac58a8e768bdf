// Package judge wraps the chat-completion API used as the probabilistic
// arbitration judge. The judge is an untrusted oracle: every response is
// parsed defensively and any failure is reported to the caller rather than
// retried. One resolution makes at most one attempt per configured backend.
package judge
