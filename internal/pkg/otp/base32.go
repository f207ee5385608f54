package otp

import "strings"

// base32Alphabet is the RFC 4648 alphabet. Secrets are emitted without '='
// padding because authenticator apps expect the unpadded form.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Base32Encode encodes buf using the unpadded RFC 4648 Base32 alphabet.
//
// Every 5 input bits map to one alphabet symbol; a final partial group is
// padded with zero bits. The function is deterministic and total.
func Base32Encode(buf []byte) string {
	var sb strings.Builder
	sb.Grow((len(buf)*8 + 4) / 5)

	var value uint32
	bits := 0
	for _, b := range buf {
		value = value<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			sb.WriteByte(base32Alphabet[(value>>(bits-5))&31])
			bits -= 5
		}
	}
	if bits > 0 {
		sb.WriteByte(base32Alphabet[(value<<(5-bits))&31])
	}

	return sb.String()
}

// Base32Decode decodes s into bytes.
//
// Decoding is lenient: input is upper-cased, trailing '=' padding is stripped,
// and characters outside the alphabet are skipped. Bits left over after the
// last whole byte are dropped, which is lossless for the byte-aligned secret
// sizes used here.
func Base32Decode(s string) []byte {
	cleaned := strings.TrimRight(strings.ToUpper(s), "=")
	out := make([]byte, 0, len(cleaned)*5/8)

	var value uint32
	bits := 0
	for i := 0; i < len(cleaned); i++ {
		idx := strings.IndexByte(base32Alphabet, cleaned[i])
		if idx < 0 {
			continue
		}
		value = value<<5 | uint32(idx)
		bits += 5
		if bits >= 8 {
			out = append(out, byte(value>>(bits-8)))
			bits -= 8
		}
	}

	return out
}
