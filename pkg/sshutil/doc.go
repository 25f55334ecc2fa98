// Package sshutil tunnels HTTP traffic to the Pi over SSH.
//
// Hosts resolve through ~/.ssh/config the same way the ssh binary does for
// HostName, Port, User and IdentityFile. Authentication tries the agent,
// then the configured identity, then the default key files. Host keys are
// checked against ~/.ssh/known_hosts unless strict checking is turned off.
package sshutil
