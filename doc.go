// Package vodozemac is the receiving half of the Megolm group-ratchet scheme:
// an inbound group session that verifies and decrypts forward-secure messages
// shared from a single sender to many recipients, together with the Ed25519
// and Curve25519 key primitives the scheme authenticates against.
//
// The root package holds the unpadded base64 helpers every wire and text form
// in the protocol uses. The session state machine lives in package megolm,
// the key primitives in package types.
package vodozemac
