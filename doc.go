// Package encstrset provides a registry of independent string collections
// whose members are only ever stored in an obfuscated form.
//
// Each member is XORed with a caller-supplied key before it is stored, see
// [github.com/dogmatiq/encstrset/cipher.Encode]. All comparisons are made
// against the obfuscated bytes.
// The same plaintext inserted under two different keys yields two distinct
// members.
//
// Collections are addressed by a [Handle] allocated by [Registry.Create].
// Operations on a handle that was never created, or that has been deleted,
// report the handle as nonexistent instead of failing.
//
// Every operation writes a line-oriented diagnostic trace describing its
// arguments and outcome. The trace is enabled by default, and disabled by
// default when built with the "release" build tag. See [WithTrace].
package encstrset
