package paillier

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/nguyenkha/demo-mpc/pkg/math/arith"
	"github.com/nguyenkha/demo-mpc/pkg/math/sample"
	"github.com/nguyenkha/demo-mpc/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	paillierPublic *PublicKey
	paillierSecret *SecretKey
)

func init() {
	pl := pool.NewPool(0)
	defer pl.TearDown()
	paillierPublic, paillierSecret = KeyGen(rand.Reader, pl, false)
}

func TestCiphertextValidate(t *testing.T) {
	C := new(saferith.Nat)
	ct := &Ciphertext{C}
	_, err := paillierSecret.Dec(ct)
	assert.Error(t, err, "decrypting 0 should fail")

	C.SetNat(paillierPublic.nNat)
	_, err = paillierSecret.Dec(ct)
	assert.Error(t, err, "decrypting N should fail")

	C.Add(C, C, -1)
	_, err = paillierSecret.Dec(ct)
	assert.Error(t, err, "decrypting 2N should fail")

	C.SetNat(paillierPublic.nSquared.Nat())
	_, err = paillierSecret.Dec(ct)
	assert.Error(t, err, "decrypting N^2 should fail")
}

func TestEncDec(t *testing.T) {
	for i := 0; i < 5; i++ {
		m1 := sample.IntervalLPrime(rand.Reader)
		m2 := sample.IntervalLPrime(rand.Reader)
		k := sample.IntervalL(rand.Reader)

		ct1, _ := paillierPublic.Enc(rand.Reader, m1)
		ct2, _ := paillierPublic.Enc(rand.Reader, m2)
		require.True(t, paillierPublic.ValidateCiphertexts(ct1, ct2))

		d1, err := paillierSecret.Dec(ct1)
		require.NoError(t, err)
		assert.Equal(t, 1, int(d1.Eq(m1)), "Dec(Enc(m)) = m")

		// m₁ + m₂
		sum := ct1.Clone().Add(paillierPublic, ct2)
		dSum, err := paillierSecret.Dec(sum)
		require.NoError(t, err)
		expected := new(saferith.Int).Add(m1, m2, -1)
		assert.Equal(t, 1, int(dSum.Eq(expected)), "homomorphic addition")

		// k⋅m₁
		prod := ct1.Clone().Mul(paillierPublic, k)
		dProd, err := paillierSecret.Dec(prod)
		require.NoError(t, err)
		expected = new(saferith.Int).Mul(k, m1, -1)
		assert.Equal(t, 1, int(dProd.Eq(expected)), "homomorphic multiplication")

		// the receiver of Clone is untouched
		d1Again, err := paillierSecret.Dec(ct1)
		require.NoError(t, err)
		assert.Equal(t, 1, int(d1Again.Eq(m1)))
	}
}

func TestDecWithRandomness(t *testing.T) {
	m := sample.IntervalLPrime(rand.Reader)
	ct, nonce := paillierPublic.Enc(rand.Reader, m)
	mDec, nonceDec, err := paillierSecret.DecWithRandomness(ct)
	require.NoError(t, err)
	assert.Equal(t, 1, int(mDec.Eq(m)))
	assert.Equal(t, 1, int(nonceDec.Eq(nonce)))
}

func TestRandomize(t *testing.T) {
	m := sample.IntervalL(rand.Reader)
	ct, _ := paillierPublic.Enc(rand.Reader, m)
	ct2 := ct.Clone()
	ct2.Randomize(rand.Reader, paillierPublic, nil)
	assert.False(t, ct.Equal(ct2))
	d, err := paillierSecret.Dec(ct2)
	require.NoError(t, err)
	assert.Equal(t, 1, int(d.Eq(m)))
}

func TestValidateN(t *testing.T) {
	assert.NoError(t, ValidateN(paillierPublic.N()))
	assert.ErrorIs(t, ValidateN(nil), ErrPaillierNil)
	assert.ErrorIs(t, ValidateN(saferith.ModulusFromUint64(35)), ErrPaillierLength)
}

func TestValidatePrime(t *testing.T) {
	assert.NoError(t, ValidatePrime(paillierSecret.P(), false))
	assert.NoError(t, ValidatePrime(paillierSecret.Q(), false))
	assert.ErrorIs(t, ValidatePrime(nil, false), ErrPrimeNil)
	assert.ErrorIs(t, ValidatePrime(new(saferith.Nat).SetUint64(7), false), ErrPrimeBadLength)

	// p + 2 ≡ 1 (mod 4)
	p := new(saferith.Nat).Add(paillierSecret.P(), new(saferith.Nat).SetUint64(2), -1)
	assert.ErrorIs(t, ValidatePrime(p, false), ErrNotBlum)
}

func TestGeneratePedersen(t *testing.T) {
	ped, lambda := paillierSecret.GeneratePedersen(rand.Reader)
	require.NoError(t, ped.Validate())
	// s = tˡ (mod N)
	s := new(saferith.Nat).Exp(ped.T(), lambda, ped.N())
	assert.Equal(t, 1, int(s.Eq(ped.S())))
	assert.True(t, arith.IsValidNatModN(ped.N(), ped.S(), ped.T()))
}

func TestMarshal(t *testing.T) {
	data, err := cbor.Marshal(paillierSecret)
	require.NoError(t, err)
	var sk SecretKey
	require.NoError(t, cbor.Unmarshal(data, &sk))
	assert.True(t, sk.PublicKey.Equal(paillierPublic))

	data, err = cbor.Marshal(paillierPublic)
	require.NoError(t, err)
	var pk PublicKey
	require.NoError(t, cbor.Unmarshal(data, &pk))
	assert.True(t, pk.Equal(paillierPublic))

	m := sample.IntervalL(rand.Reader)
	ct, _ := pk.Enc(rand.Reader, m)
	data, err = cbor.Marshal(ct)
	require.NoError(t, err)
	var ct2 Ciphertext
	require.NoError(t, cbor.Unmarshal(data, &ct2))
	d, err := sk.Dec(&ct2)
	require.NoError(t, err)
	assert.Equal(t, 1, int(d.Eq(m)))
}
