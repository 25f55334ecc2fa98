// Package dashboard implements the interactive terminal dashboard: six
// tabs of Pi state, a single poller that always serves what is on screen,
// stacked modals for container details, logs, scans and confirmations, and
// a toast queue for action feedback.
package dashboard
