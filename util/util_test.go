package util

import (
	"bytes"
	"math/big"
	"testing"
)

func TestFixedLengthBytes(t *testing.T) {
	v := big.NewInt(0x0102)
	got := FixedLengthBytes(v, 4)
	if !bytes.Equal(got, []byte{0x00, 0x00, 0x01, 0x02}) {
		t.Errorf("FixedLengthBytes pad = %x", got)
	}

	v, _ = new(big.Int).SetString("aabbccddee", 16)
	got = FixedLengthBytes(v, 4)
	if !bytes.Equal(got, []byte{0xbb, 0xcc, 0xdd, 0xee}) {
		t.Errorf("FixedLengthBytes truncate = %x", got)
	}
}

func TestModInverse(t *testing.T) {
	n := big.NewInt(23)
	x := big.NewInt(7)
	inv := ModInverse(x, n)
	if inv == nil {
		t.Fatal("ModInverse(7, 23) = nil")
	}
	if Mod(Mul(x, inv), n).Int64() != 1 {
		t.Errorf("7 * %v mod 23 != 1", inv)
	}
}

func TestModSqrt(t *testing.T) {
	p := big.NewInt(23)
	r := ModSqrt(big.NewInt(4), p)
	if r == nil || Mod(Mul(r, r), p).Int64() != 4 {
		t.Errorf("ModSqrt(4, 23) = %v", r)
	}
	// 5为模23的二次非剩余。
	if r := ModSqrt(big.NewInt(5), p); r != nil {
		t.Errorf("ModSqrt(5, 23) = %v, want nil", r)
	}
}

func TestIsEcPointInfinity(t *testing.T) {
	if !IsEcPointInfinity(big.NewInt(0), big.NewInt(0)) {
		t.Error("(0, 0) should be the point at infinity")
	}
	if IsEcPointInfinity(big.NewInt(1), big.NewInt(0)) {
		t.Error("(1, 0) should not be the point at infinity")
	}
	if !IsEcPointInfinity(nil, nil) {
		t.Error("nil coordinates should count as the point at infinity")
	}
}

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x1f, 0xaa}
	s := BytesToHex(raw)
	if s != "001faa" {
		t.Errorf("BytesToHex = %s", s)
	}
	back, err := HexToBytes(s)
	if err != nil || !bytes.Equal(back, raw) {
		t.Errorf("HexToBytes(%s) = %x, %v", s, back, err)
	}
	if _, err := HexToBytes("zz"); err == nil {
		t.Error("HexToBytes accepted non-hex input")
	}
}
