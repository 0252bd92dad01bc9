// Package cli provides the interactive lessonbook command-line client.
//
// It wires configuration, the local token database, the session manager
// and one of the two API clients, then runs a REPL:
//
//   - register / login / logout
//   - profile: who the server says the current token belongs to
//   - me: the protected endpoint, refreshing the session when needed
//   - status: the locally decoded access token
//
// A refresh token left by a previous run is picked up automatically, so a
// new session resumes without a password. The REPL is started via
// App.Run(ctx), which blocks until the user exits.
package cli
