// Package paillier implements the Paillier cryptosystem over moduli N = p⋅q,
// where p and q are Blum primes (p ≡ q ≡ 3 mod 4).
//
// Ciphertexts are additively homomorphic:
//
//	Enc(m₁) ⊕ Enc(m₂) = Enc(m₁ + m₂)
//	k ⊙ Enc(m) = Enc(k⋅m)
//
// Plaintexts are signed integers in ±(N-1)/2.
package paillier

import (
	"io"

	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
)

// KeyGen generates a new PublicKey and its associated SecretKey.
//
// When safe is set, p and q are safe primes, which takes considerably longer.
func KeyGen(rand io.Reader, pl *pool.Pool, safe bool) (pk *PublicKey, sk *SecretKey) {
	sk = NewSecretKeyFromPrimes(sample.Paillier(rand, pl, safe))
	pk = sk.PublicKey
	return
}
