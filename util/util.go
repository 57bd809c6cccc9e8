// Package util 为国密算法实现提供大整数模运算和定长字节编码的公共工具函数。
// 所有运算函数均返回新分配的big.Int实例，不修改入参。
package util

import (
	"encoding/hex"
	"errors"
	"math/big"
)

// Add 返回 x + y。
func Add(x, y *big.Int) *big.Int {
	return new(big.Int).Add(x, y)
}

// Sub 返回 x - y。
func Sub(x, y *big.Int) *big.Int {
	return new(big.Int).Sub(x, y)
}

// Mul 返回 x * y。
func Mul(x, y *big.Int) *big.Int {
	return new(big.Int).Mul(x, y)
}

// Mod 返回 x mod n, 结果取非负余数。
func Mod(x, n *big.Int) *big.Int {
	return new(big.Int).Mod(x, n)
}

// ModInverse 返回 x 在模 n 下的乘法逆元; 逆元不存在时返回nil。
func ModInverse(x, n *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, n)
}

// ModSqrt 返回 x 在模素数 p 下的平方根; x为模p的二次非剩余时返回nil。
// 用于SM2压缩格式公钥的y坐标恢复。
func ModSqrt(x, p *big.Int) *big.Int {
	return new(big.Int).ModSqrt(x, p)
}

// IsEcPointInfinity 判断仿射坐标(x, y)是否为无穷远点O。
// GO语言标准库crypto/elliptic在雅可比坐标转回仿射坐标时以(0, 0)代表无穷远点。
func IsEcPointInfinity(x, y *big.Int) bool {
	if x == nil || y == nil {
		return true
	}
	return x.Sign() == 0 && y.Sign() == 0
}

// FixedLengthBytes 将大整数v转化为size个字节的大端字节数组:
// (1) 不足size字节时在头部填充0x00;
// (2) 超过size字节时从头部截断，只保留低位的size个字节。
func FixedLengthBytes(v *big.Int, size int) []byte {
	src := v.Bytes()
	dst := make([]byte, size)
	if len(src) > size {
		copy(dst, src[len(src)-size:])
	} else {
		copy(dst[size-len(src):], src)
	}
	return dst
}

// BytesToHex 将字节数组转化为小写16进制字符串。
func BytesToHex(in []byte) string {
	return hex.EncodeToString(in)
}

// HexToBytes 将16进制字符串解码为字节数组。
func HexToBytes(in string) ([]byte, error) {
	out, err := hex.DecodeString(in)
	if err != nil {
		return nil, errors.New("util: invalid hex string")
	}
	return out, nil
}
