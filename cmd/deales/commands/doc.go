// Package commands defines the deales CLI.
//
// Commands
//
//   - login <role>    Sign in as a dealership or salesperson
//   - signup <role>   Walk the registration wizard and create the account
//   - logout          Revoke the token and clear the local session
//   - whoami          Show the signed-in identity
//   - open <path>     Resolve a client route against the current session
//
// The root command loads ~/.deales/config.yaml, restores the session from its
// durable slot and wires the API client, registration service and router
// before any subcommand runs. Ctrl-C cancels the context, which stops a
// signup between remote calls.
package commands
