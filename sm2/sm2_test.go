package sm2

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidatePrivateKey(priv); err != nil {
		t.Fatal(err)
	}
	if err := ValidatePublicKey(&priv.PublicKey); err != nil {
		t.Fatal(err)
	}

	pub := CalculatePubKey(priv)
	if pub.X.Cmp(priv.X) != 0 || pub.Y.Cmp(priv.Y) != 0 {
		t.Error("generated public key does not match [d]G")
	}
}

func TestGenerateKeyNilReader(t *testing.T) {
	priv, err := GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidatePrivateKey(priv); err != nil {
		t.Fatal(err)
	}
}

func TestPrivateKeyRange(t *testing.T) {
	curve := GetSm2P256V1()

	zero := &PrivateKey{D: big.NewInt(0)}
	if err := ValidatePrivateKey(zero); err == nil {
		t.Error("scalar 0 accepted")
	}

	nMinus1 := &PrivateKey{D: new(big.Int).Sub(curve.N, big.NewInt(1))}
	if err := ValidatePrivateKey(nMinus1); err == nil {
		t.Error("scalar n-1 accepted")
	}

	nMinus2 := &PrivateKey{D: new(big.Int).Sub(curve.N, big.NewInt(2))}
	if err := ValidatePrivateKey(nMinus2); err != nil {
		t.Errorf("scalar n-2 rejected: %v", err)
	}

	one := &PrivateKey{D: big.NewInt(1)}
	if err := ValidatePrivateKey(one); err != nil {
		t.Errorf("scalar 1 rejected: %v", err)
	}
}

func TestNewKeyPairDerivesPublic(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	kp, err := NewKeyPair(nil, &PrivateKey{D: priv.D})
	if err != nil {
		t.Fatal(err)
	}
	if kp.Pub == nil || kp.Pub.X.Cmp(priv.X) != 0 || kp.Pub.Y.Cmp(priv.Y) != 0 {
		t.Error("key pair did not derive the public half from the private scalar")
	}
}

func TestNewKeyPairMismatch(t *testing.T) {
	a, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewKeyPair(&a.PublicKey, &PrivateKey{D: b.D}); err != ErrInvalidKey {
		t.Errorf("mismatched key pair accepted, err = %v", err)
	}
	if _, err := NewKeyPair(nil, nil); err != ErrMissingKey {
		t.Errorf("empty key pair, err = %v", err)
	}
}

func TestRawBytesRoundTrip(t *testing.T) {
	priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	priv2, err := RawBytesToPrivateKey(priv.GetRawBytes())
	if err != nil {
		t.Fatal(err)
	}
	if priv2.D.Cmp(priv.D) != 0 {
		t.Error("private key raw-bytes round trip changed the scalar")
	}

	pub2, err := RawBytesToPublicKey(priv.PublicKey.GetRawBytes())
	if err != nil {
		t.Fatal(err)
	}
	if pub2.X.Cmp(priv.X) != 0 || pub2.Y.Cmp(priv.Y) != 0 {
		t.Error("public key raw-bytes round trip changed the point")
	}

	if _, err := RawBytesToPrivateKey(make([]byte, KeyBytes-1)); err == nil {
		t.Error("short private key bytes accepted")
	}
	if _, err := RawBytesToPublicKey(make([]byte, KeyBytes)); err == nil {
		t.Error("short public key bytes accepted")
	}
}
