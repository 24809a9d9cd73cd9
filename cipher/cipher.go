// Package cipher implements the reversible XOR transform used to obfuscate
// collection members.
//
// The transform is not a security primitive. It hides plaintext from casual
// inspection of stored values and nothing more.
package cipher

// Encode returns plaintext XORed with key, where key is repeated as many times
// as necessary to cover the whole of plaintext.
//
// If key is empty, the result is a copy of plaintext. The result always has the
// same length as plaintext and never shares memory with it.
func Encode(plaintext, key []byte) []byte {
	out := make([]byte, len(plaintext))

	if len(key) == 0 {
		copy(out, plaintext)
		return out
	}

	for i, octet := range plaintext {
		out[i] = octet ^ key[i%len(key)]
	}

	return out
}

// Decode reverses [Encode].
//
// XOR is its own inverse, so Decode(Encode(p, k), k) is equal to p.
func Decode(obfuscated, key []byte) []byte {
	return Encode(obfuscated, key)
}
