package sm4

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

// pkcs7Padding 按PKCS#7规则填充尾部字节，填充长度位于区间[1, BlockSize]。
func pkcs7Padding(src []byte) []byte {
	padding := BlockSize - len(src)%BlockSize
	return append(src, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// pkcs7UnPadding 按PKCS#7规则校验并截去尾部填充字节。
func pkcs7UnPadding(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("sm4: empty plaintext after decryption")
	}
	unpadding := int(src[len(src)-1])
	if unpadding == 0 || unpadding > BlockSize || unpadding > len(src) {
		return nil, errors.New("sm4: invalid pkcs7 padding")
	}
	for _, b := range src[len(src)-unpadding:] {
		if b != byte(unpadding) {
			return nil, errors.New("sm4: invalid pkcs7 padding")
		}
	}
	return src[:len(src)-unpadding], nil
}

// CBCEncrypt 以CBC模式加密:
// (1) 按PKCS#7规则填充明文;
// (2) 从随机源读取16字节作为初始向量并置于密文头部;
// (3) 调用标准库cipher.NewCBCEncrypter完成分组链式加密。
// rnd传入nil时采用标准库crypto/rand.Reader。
func CBCEncrypt(rnd io.Reader, key, plain []byte) ([]byte, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	iv := make([]byte, BlockSize)
	if _, err := io.ReadFull(rnd, iv); err != nil {
		return nil, err
	}
	return CBCEncryptWithIV(iv, key, plain)
}

// CBCEncryptWithIV 以调用方给定的初始向量进行CBC模式加密，初始向量置于密文头部。
func CBCEncryptWithIV(iv, key, plain []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, errors.New("sm4: IV length must equal the block size")
	}
	block, err := NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Padding(plain)
	out := make([]byte, BlockSize+len(padded))
	copy(out[:BlockSize], iv)

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(out[BlockSize:], padded)
	return out, nil
}

// CBCDecrypt 以CBC模式解密，从密文头部读取初始向量，并按PKCS#7规则校验、截去填充。
func CBCDecrypt(key, in []byte) ([]byte, error) {
	block, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(in) < BlockSize*2 || len(in)%BlockSize != 0 {
		return nil, errors.New("sm4: ciphertext length must be a non-trivial multiple of the block size")
	}

	iv := in[:BlockSize]
	body := make([]byte, len(in)-BlockSize)

	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(body, in[BlockSize:])
	return pkcs7UnPadding(body)
}
