// Package commands defines the vodozemac CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create local signing and Diffie-Hellman keypairs
//   - fingerprint  Print the signing key fingerprint
//   - import       Import a group session from a session key
//   - decrypt      Decrypt a group message with a stored session
//   - export       Export a stored session at a message index
//
// # Implementation
//
// The root command opens the key store directory before any subcommand runs,
// so handlers share one store and one Megolm suite. Key material on disk is
// sealed under the passphrase given with -p.
package commands
