package sm4

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// 国标GB/T 32907-2016附录A.1的示例向量。
func TestBlockVector(t *testing.T) {
	key, _ := hex.DecodeString("0123456789abcdeffedcba9876543210")
	plain, _ := hex.DecodeString("0123456789abcdeffedcba9876543210")
	want, _ := hex.DecodeString("681edf34d206965e86b3e94f536e4246")

	c, err := NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}

	got := make([]byte, BlockSize)
	c.Encrypt(got, plain)
	if !bytes.Equal(got, want) {
		t.Fatalf("Encrypt = %x, want %x", got, want)
	}

	back := make([]byte, BlockSize)
	c.Decrypt(back, got)
	if !bytes.Equal(back, plain) {
		t.Fatalf("Decrypt = %x, want %x", back, plain)
	}
}

func TestKeySize(t *testing.T) {
	if _, err := NewCipher(make([]byte, 15)); err == nil {
		t.Error("15-byte key accepted")
	}
	if _, err := NewCipher(make([]byte, 17)); err == nil {
		t.Error("17-byte key accepted")
	}
	c, err := NewCipher(make([]byte, KeySize))
	if err != nil {
		t.Fatal(err)
	}
	if c.BlockSize() != BlockSize {
		t.Errorf("BlockSize() = %d, want %d", c.BlockSize(), BlockSize)
	}
}

func TestCBCRoundTrip(t *testing.T) {
	key, _ := hex.DecodeString("0123456789abcdeffedcba9876543210")
	for _, plain := range [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("0123456789abcdef"), // 恰为一个分组，填充应再加一整组。
		[]byte("国密SM4对称加密算法"),
	} {
		out, err := CBCEncrypt(nil, key, plain)
		if err != nil {
			t.Fatal(err)
		}
		if (len(out)-BlockSize)%BlockSize != 0 {
			t.Errorf("ciphertext body length %d is not block aligned", len(out)-BlockSize)
		}
		back, err := CBCDecrypt(key, out)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(back, plain) {
			t.Errorf("CBC round trip = %x, want %x", back, plain)
		}
	}
}

func TestCBCWithIVDeterminism(t *testing.T) {
	key, _ := hex.DecodeString("0123456789abcdeffedcba9876543210")
	iv := bytes.Repeat([]byte{0x01}, BlockSize)
	plain := []byte("message digest")

	first, err := CBCEncryptWithIV(iv, key, plain)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CBCEncryptWithIV(iv, key, plain)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same IV and key produced different ciphertexts")
	}
	if !bytes.Equal(first[:BlockSize], iv) {
		t.Error("ciphertext does not start with the IV")
	}

	if _, err := CBCEncryptWithIV(iv[:8], key, plain); err == nil {
		t.Error("short IV accepted")
	}
}

func TestCBCRejectsCorruptPadding(t *testing.T) {
	key, _ := hex.DecodeString("0123456789abcdeffedcba9876543210")
	out, err := CBCEncrypt(nil, key, []byte("message digest"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := CBCDecrypt(key, out[:BlockSize]); err == nil {
		t.Error("IV-only ciphertext accepted")
	}
	if _, err := CBCDecrypt(key, out[:BlockSize+1]); err == nil {
		t.Error("unaligned ciphertext accepted")
	}

	// 破坏密文末分组，解密后的填充字节大概率非法。
	out[len(out)-1] ^= 0xff
	if _, err := CBCDecrypt(key, out); err == nil {
		t.Skip("corrupted padding happened to stay well-formed")
	}
}
