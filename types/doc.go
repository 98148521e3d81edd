// Package types holds the asymmetric key primitives the Megolm session
// depends on: Ed25519 signing keypairs, verifying keys and signatures, and
// Curve25519 Diffie-Hellman keypairs.
//
// Public keys and signatures are plain fixed-size value types with stable
// unpadded base64 text forms. Keypairs own their secret half and derive the
// public half at construction, so the two can never desynchronise. Keypairs
// serialize to pickles: at-rest byte containers that wipe their secret
// contents on Destroy.
package types
