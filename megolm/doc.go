// Package megolm implements the inbound half of the Megolm group-ratchet
// scheme: parsing and validating session keys, tracking ratchet state across
// out-of-order message indices, and the layered decrypt pipeline (signature,
// then MAC, then ciphertext).
//
// The key-derivation ratchet, the symmetric cipher and the message codec are
// consumed through the Ratchet, Cipher and Message capability interfaces; a
// Suite bundles their constructors. DefaultSuite returns the standard Megolm
// constructions.
//
// Concurrency: an InboundGroupSession is NOT safe for concurrent use. Decrypt
// mutates ratchet state, so callers must serialise access per session. Parsed
// keys and exported blobs are plain values.
package megolm
