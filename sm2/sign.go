package sm2

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"hash"
	"io"
	"math/big"

	"github.com/Hyperledger-TWGC/node-gm/sm3"
	"github.com/Hyperledger-TWGC/node-gm/util"
)

// sm2SignDefaultUserID 代表SM2签名预处理缺省的用户身份标识，
// 即国标示例与SM2使用规范(GB/T 35276-2017)采用的16字节ASCII串"1234567812345678"，
// 对应比特长度ENTL=0x0080。
var sm2SignDefaultUserID = []byte{
	0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38,
	0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38}

// maxSignAttempts 为签名循环的重试上限。
// 重试条件(r=0, r+k=n, s=0)出现的概率可忽略，上限仅作为活性保障。
const maxSignAttempts = 64

var errSignAttempts = errors.New("sm2: failed to produce a signature within the retry limit")

// Signature 代表SM2算法的数字签名值(r, s)，r与s均位于区间[1, n-1]。
type Signature struct {
	R, S *big.Int
}

// Bytes 将签名序列化为64字节数组: r与s各占32字节定长大端格式。
func (sig *Signature) Bytes() []byte {
	raw := make([]byte, KeyBytes*2)
	copy(raw[:KeyBytes], util.FixedLengthBytes(sig.R, KeyBytes))
	copy(raw[KeyBytes:], util.FixedLengthBytes(sig.S, KeyBytes))
	return raw
}

// HexPair 返回r与s的16进制字符串形式，各为64个小写字符。
func (sig *Signature) HexPair() (r string, s string) {
	return util.BytesToHex(util.FixedLengthBytes(sig.R, KeyBytes)),
		util.BytesToHex(util.FixedLengthBytes(sig.S, KeyBytes))
}

// SignatureFromBytes 将64字节数组反序列化为签名值。
func SignatureFromBytes(in []byte) (*Signature, error) {
	if len(in) != KeyBytes*2 {
		return nil, ErrInvalidEncoding
	}
	return &Signature{
		R: new(big.Int).SetBytes(in[:KeyBytes]),
		S: new(big.Int).SetBytes(in[KeyBytes:]),
	}, nil
}

// SignatureFromHex 将r与s的16进制字符串形式解析为签名值。
func SignatureFromHex(rHex, sHex string) (*Signature, error) {
	r, ok := new(big.Int).SetString(rHex, 16)
	if !ok {
		return nil, ErrInvalidEncoding
	}
	s, ok := new(big.Int).SetString(sHex, 16)
	if !ok {
		return nil, ErrInvalidEncoding
	}
	return &Signature{R: r, S: s}, nil
}

// getZ 为SM2签名算法的第1步预处理函数，以签名方身份标识和公钥信息为基础计算Z值:
// (1) 首2个字节为用户身份标识的比特长度ENTL（大端）;
// (2) 之后为用户身份标识字节串;
// (3) 之后顺次为曲线参数a, b, Gx, Gy和公钥坐标X, Y，均为32字节定长大端格式
// （坐标头部的0不可省略，否则与其他实现无法互通）;
// (4) 具体算法见国标2-5.5。
func getZ(digest hash.Hash, curve *P256V1Curve, pubX, pubY *big.Int, userID []byte) []byte {
	digest.Reset()

	userIDLen := uint16(len(userID) * 8)
	var userIDLenBytes [2]byte
	binary.BigEndian.PutUint16(userIDLenBytes[:], userIDLen)
	digest.Write(userIDLenBytes[:])
	if len(userID) > 0 {
		digest.Write(userID)
	}

	digest.Write(util.FixedLengthBytes(curve.A, KeyBytes))
	digest.Write(util.FixedLengthBytes(curve.B, KeyBytes))
	digest.Write(util.FixedLengthBytes(curve.Gx, KeyBytes))
	digest.Write(util.FixedLengthBytes(curve.Gy, KeyBytes))
	digest.Write(util.FixedLengthBytes(pubX, KeyBytes))
	digest.Write(util.FixedLengthBytes(pubY, KeyBytes))
	return digest.Sum(nil)
}

// calculateE 为SM2签名算法的第2步预处理函数，计算 e = Hash(Z || M)
// 并按大端序解释为大整数（国标2-6.1）。
func calculateE(digest hash.Hash, curve *P256V1Curve, pubX, pubY *big.Int, userID []byte, src []byte) *big.Int {
	z := getZ(digest, curve, pubX, pubY, userID)

	digest.Reset()
	digest.Write(z)
	digest.Write(src)
	eHash := digest.Sum(nil)
	return new(big.Int).SetBytes(eHash)
}

// GetZ 计算签名方的Z值。userID传入nil时采用缺省用户身份标识。
func GetZ(pub *PublicKey, userID []byte) ([]byte, error) {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil, ErrMissingKey
	}
	if userID == nil {
		userID = sm2SignDefaultUserID
	}
	curve := GetSm2P256V1()
	return getZ(sm3.New(), &curve, pub.X, pub.Y, userID), nil
}

// nextK 为生成区间[1, max)内随机整数的函数，随机源由调用方注入。
func nextK(rnd io.Reader, max *big.Int) (*big.Int, error) {
	intOne := new(big.Int).SetInt64(1)
	for {
		k, err := rand.Int(rnd, max)
		if err != nil {
			return nil, err
		}
		if k.Cmp(intOne) >= 0 {
			return k, nil
		}
	}
}

// signWithDigest 为SM2签名算法的核心函数（国标2-6.1）:
// (1) 生成随机数k, k属于区间[1, n-1];
// (2) 推算曲线点(x1, y1) = [k]G;
// (3) 计算 r = (e + x1) mod n, 校验 r != 0 且 r+k != n;
// (4) 计算 s = ((1+d)^(-1) * (k - r*d)) mod n, 校验 s != 0;
// (5) 任一校验不通过则重新抽取k，重试次数超限报错。
func signWithDigest(rnd io.Reader, priv *PrivateKey, e *big.Int) (*Signature, error) {
	if priv == nil || priv.D == nil {
		return nil, ErrMissingKey
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	curve := GetSm2P256V1()

	intZero := new(big.Int).SetInt64(0)
	intOne := new(big.Int).SetInt64(1)
	dPlus1Inv := util.ModInverse(util.Add(priv.D, intOne), curve.N)
	if dPlus1Inv == nil {
		// d = n-1 时 (1+d) 在模n下不可逆，此类私钥在校验阶段即被拒绝。
		return nil, ErrInvalidKey
	}

	for i := 0; i < maxSignAttempts; i++ {
		k, err := nextK(rnd, curve.N)
		if err != nil {
			return nil, err
		}

		px, _ := curve.ScalarBaseMult(k.Bytes())
		r := util.Mod(util.Add(e, px), curve.N)

		rk := util.Add(r, k)
		if r.Cmp(intZero) == 0 || rk.Cmp(curve.N) == 0 {
			continue
		}

		s := util.Mod(util.Sub(k, util.Mul(r, priv.D)), curve.N)
		s = util.Mod(util.Mul(dPlus1Inv, s), curve.N)
		if s.Cmp(intZero) == 0 {
			continue
		}

		return &Signature{R: r, S: s}, nil
	}
	return nil, errSignAttempts
}

// verifyWithDigest 为SM2验证签名算法的核心函数（国标2-7.1）:
// (1) 校验 1 <= r < n 且 1 <= s < n;
// (2) 计算 t = (r + s) mod n, 校验 t != 0;
// (3) 推算曲线点(x1, y1) = [s]G + [t]P, 校验其不为无穷远点;
// (4) 当且仅当 (e + x1) mod n = r 时通过校验。
func verifyWithDigest(pub *PublicKey, e *big.Int, sig *Signature) bool {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return false
	}
	if sig == nil || sig.R == nil || sig.S == nil {
		return false
	}
	curve := GetSm2P256V1()

	intOne := new(big.Int).SetInt64(1)
	if sig.R.Cmp(intOne) == -1 || sig.R.Cmp(curve.N) >= 0 {
		return false
	}
	if sig.S.Cmp(intOne) == -1 || sig.S.Cmp(curve.N) >= 0 {
		return false
	}

	t := util.Mod(util.Add(sig.R, sig.S), curve.N)
	if t.Sign() == 0 {
		return false
	}

	sgx, sgy := curve.ScalarBaseMult(sig.S.Bytes())
	tpx, tpy := curve.ScalarMult(pub.X, pub.Y, t.Bytes())
	x, y := curve.Add(sgx, sgy, tpx, tpy)
	if util.IsEcPointInfinity(x, y) {
		return false
	}

	expectedR := util.Mod(util.Add(e, x), curve.N)
	return expectedR.Cmp(sig.R) == 0
}

// Sign 为带身份标识预处理的SM2签名函数:
// (1) 计算 e = SM3(Z || msg)，Z值绑定用户身份标识、曲线参数和公钥;
// (2) 调用核心签名函数推算(r, s)。
// rnd传入nil时采用标准库crypto/rand.Reader; userID传入nil时采用缺省用户身份标识。
func Sign(rnd io.Reader, priv *PrivateKey, userID, msg []byte) (*Signature, error) {
	if priv == nil || priv.D == nil {
		return nil, ErrMissingKey
	}
	curve := GetSm2P256V1()
	pubX, pubY := priv.X, priv.Y
	if pubX == nil || pubY == nil {
		pubX, pubY = curve.ScalarBaseMult(priv.D.Bytes())
	}
	if userID == nil {
		userID = sm2SignDefaultUserID
	}
	e := calculateE(sm3.New(), &curve, pubX, pubY, userID, msg)
	return signWithDigest(rnd, priv, e)
}

// Verify 为带身份标识预处理的SM2验证签名函数。
// 签名不匹配返回false而非错误; userID传入nil时采用缺省用户身份标识。
func Verify(pub *PublicKey, userID, msg []byte, sig *Signature) bool {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return false
	}
	if userID == nil {
		userID = sm2SignDefaultUserID
	}
	curve := GetSm2P256V1()
	e := calculateE(sm3.New(), &curve, pub.X, pub.Y, userID, msg)
	return verifyWithDigest(pub, e, sig)
}

// SignRaw 为不带身份标识预处理的SM2签名函数，直接以 e = SM3(msg) 参与签名运算。
// 仅能与同样省略预处理步骤的对端互通。
func SignRaw(rnd io.Reader, priv *PrivateKey, msg []byte) (*Signature, error) {
	eHash := sm3.Sum(msg)
	return signWithDigest(rnd, priv, new(big.Int).SetBytes(eHash[:]))
}

// VerifyRaw 为不带身份标识预处理的SM2验证签名函数。
func VerifyRaw(pub *PublicKey, msg []byte, sig *Signature) bool {
	eHash := sm3.Sum(msg)
	return verifyWithDigest(pub, new(big.Int).SetBytes(eHash[:]), sig)
}

// SignDigest 直接对32字节哈希摘要签名，摘要按大端序解释为大整数e。
func SignDigest(rnd io.Reader, priv *PrivateKey, digest []byte) (*Signature, error) {
	if len(digest) != sm3.Size {
		return nil, errors.New("sm2: digest must be 32 bytes")
	}
	return signWithDigest(rnd, priv, new(big.Int).SetBytes(digest))
}

// VerifyDigest 直接对32字节哈希摘要验证签名。
func VerifyDigest(pub *PublicKey, digest []byte, sig *Signature) bool {
	if len(digest) != sm3.Size {
		return false
	}
	return verifyWithDigest(pub, new(big.Int).SetBytes(digest), sig)
}
