// Package hashutil implements the kernel's sole hash primitive: a
// self-contained FIPS 180-4 SHA-256 over byte slices, plus the two
// domain-separated helpers the Merkle layer builds on. The implementation
// deliberately avoids crypto/sha256 and any hardware-accelerated or
// assembly backend; see DESIGN.md for why the consensus-critical digest
// is hand-rolled rather than imported.
package hashutil

import "encoding/binary"

// Size is the digest length in bytes produced by Hash.
const Size = 32

const blockSize = 64

var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

var initialState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

// Hash computes the FIPS 180-4 SHA-256 digest of data.
func Hash(data []byte) [32]byte {
	padded := pad(data)
	h := initialState

	for off := 0; off < len(padded); off += blockSize {
		compress(&h, padded[off:off+blockSize])
	}

	var out [32]byte
	for i, v := range h {
		binary.BigEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// HashLeaf computes SHA-256(0x00 || bytes), the Merkle tree's leaf digest.
func HashLeaf(data []byte) [32]byte {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, 0x00)
	buf = append(buf, data...)
	return Hash(buf)
}

// HashNode computes SHA-256(0x01 || left || right), the Merkle tree's
// internal node digest.
func HashNode(left, right [32]byte) [32]byte {
	var buf [65]byte
	buf[0] = 0x01
	copy(buf[1:33], left[:])
	copy(buf[33:65], right[:])
	return Hash(buf[:])
}

// EmptyTreeRoot returns hash_leaf(empty byte string), the frozen root of a
// zero-leaf Merkle tree. It is defined to equal HashLeaf(nil).
func EmptyTreeRoot() [32]byte {
	return HashLeaf(nil)
}

func pad(data []byte) []byte {
	msgLenBits := uint64(len(data)) * 8

	padded := make([]byte, len(data), len(data)+blockSize)
	copy(padded, data)
	padded = append(padded, 0x80)

	for len(padded)%blockSize != blockSize-8 {
		padded = append(padded, 0x00)
	}

	var lenBytes [8]byte
	binary.BigEndian.PutUint64(lenBytes[:], msgLenBits)
	padded = append(padded, lenBytes[:]...)
	return padded
}

func compress(h *[8]uint32, block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := rotr(w[i-15], 7) ^ rotr(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr(w[i-2], 17) ^ rotr(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

	for i := 0; i < 64; i++ {
		s1 := rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25)
		ch := (e & f) ^ (^e & g)
		temp1 := hh + s1 + ch + k[i] + w[i]
		s0 := rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		temp2 := s0 + maj

		hh = g
		g = f
		f = e
		e = d + temp1
		d = c
		c = b
		b = a
		a = temp1 + temp2
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
	h[4] += e
	h[5] += f
	h[6] += g
	h[7] += hh
}

func rotr(x uint32, n uint) uint32 {
	return (x >> n) | (x << (32 - n))
}
