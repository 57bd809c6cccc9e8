// Package sm2 为国密SM2椭圆曲线数字签名算法的Go语言实现（国标编号: GB/T 32918-2016）。
// 本包实现SM2推荐曲线参数、公私钥对、公钥点编解码和数字签名的生成与验证;
// 大整数模运算委托标准库math/big, 椭圆曲线群运算委托标准库crypto/elliptic,
// 随机数委托标准库crypto/rand或调用方注入的随机源。
package sm2

import (
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/Hyperledger-TWGC/node-gm/util"
)

const (
	// BitSize 代表曲线基础域的比特长度。
	BitSize = 256
	// KeyBytes 代表秘钥的字节长度，加7整除8为“向上取整”，用以兼容基础域位数不是8的整数倍的情况。
	KeyBytes = (BitSize + 7) / 8
)

// 本包对外报告的错误类别。
var (
	// ErrInvalidEncoding 代表公钥点编码非法: 标识字节错误、长度错误、非16进制字符、
	// 无穷远点标识、或压缩格式恢复后奇偶校验不符。
	ErrInvalidEncoding = errors.New("sm2: invalid point encoding")
	// ErrNotOnCurve 代表解码后的点不满足曲线方程或不在n阶子群上。
	ErrNotOnCurve = errors.New("sm2: point is not on the curve")
	// ErrInvalidKey 代表私钥标量越界、公钥点为无穷远点或坐标越界、或公私钥不满足 pub = [pri]G 的对应关系。
	ErrInvalidKey = errors.New("sm2: invalid key")
	// ErrMissingKey 代表签名时缺少私钥、或验签时缺少公钥。
	ErrMissingKey = errors.New("sm2: missing key for requested operation")
)

// P256V1Curve 代表国密SM2推荐参数定义的椭圆曲线:
// (1) 素数域256位椭圆曲线, 曲线方程为 Y^2 = X^3 + aX + b;
// (2) 在GO语言标准库通用椭圆曲线参数类elliptic.CurveParams的基础上增加了参数a的属性;
// (3) 由于SM2推荐曲线符合a=p-3, 曲线等价于 Y^2 = X^3 - 3X + b (mod p),
// 符合标准库elliptic预设的曲线函数，所以可直接适用标准库的群运算方法。
type P256V1Curve struct {
	*elliptic.CurveParams
	A *big.Int
}

// PublicKey 代表SM2算法的公钥类:
// (1) X, Y 为公钥点（基点G的D倍点）坐标;
// (2) Curve 为SM2算法的椭圆曲线。
type PublicKey struct {
	X, Y  *big.Int
	Curve P256V1Curve
}

// PrivateKey 代表SM2算法的私钥类，D代表公钥点相对于基点G的倍数。
type PrivateKey struct {
	D *big.Int
	PublicKey
}

// KeyPair 将可缺省的公钥和私钥绑定为秘钥对。
// 公私钥均不可变，缺少某一半时仅支持另一半所能完成的操作。
type KeyPair struct {
	Pub *PublicKey
	Pri *PrivateKey
}

var sm2P256V1 P256V1Curve

var initonce sync.Once

// initSm2P256V1 按国标推荐参数初始化SM2椭圆曲线，余因子h=1。
func initSm2P256V1() {
	sm2P, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
	sm2A, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFC", 16)
	sm2B, _ := new(big.Int).SetString("28E9FA9E9D9F5E344D5A9E4BCF6509A7F39789F515AB8F92DDBCBD414D940E93", 16)
	sm2N, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
	sm2Gx, _ := new(big.Int).SetString("32C4AE2C1F1981195F9904466A39C9948FE30BBFF2660BE1715A4589334C74C7", 16)
	sm2Gy, _ := new(big.Int).SetString("BC3736A2F4F6779C59BDCEE36B692153D0A9877CC62A474002DF32E52139F0A0", 16)
	sm2P256V1.CurveParams = &elliptic.CurveParams{Name: "SM2-P-256-V1"}
	sm2P256V1.P = sm2P
	sm2P256V1.A = sm2A
	sm2P256V1.B = sm2B
	sm2P256V1.N = sm2N
	sm2P256V1.Gx = sm2Gx
	sm2P256V1.Gy = sm2Gy
	sm2P256V1.BitSize = BitSize
}

// GetSm2P256V1 为获取国密SM2推荐椭圆曲线定义的函数。
func GetSm2P256V1() P256V1Curve {
	initonce.Do(initSm2P256V1)
	return sm2P256V1
}

// GenerateKey 为国密SM2生成秘钥对的函数:
// (1) 从随机源读取32字节并按大端序解释为标量d;
// (2) 校验 1 <= d <= n-2, 越界则重新抽取（国标2-6.1对私钥取值范围的规定）;
// (3) 推算公钥点 P = [d]G 并组装私钥实例。
// rnd传入nil时采用标准库crypto/rand.Reader。
func GenerateKey(rnd io.Reader) (*PrivateKey, error) {
	curve := GetSm2P256V1()
	if rnd == nil {
		rnd = rand.Reader
	}
	nMinus2 := util.Sub(curve.N, big.NewInt(2))
	var buf [KeyBytes]byte
	for {
		if _, err := io.ReadFull(rnd, buf[:]); err != nil {
			return nil, err
		}
		d := new(big.Int).SetBytes(buf[:])
		if d.Sign() == 0 || d.Cmp(nMinus2) > 0 {
			continue
		}
		priv := new(PrivateKey)
		priv.Curve = curve
		priv.D = d
		priv.X, priv.Y = curve.ScalarBaseMult(d.Bytes())
		return priv, nil
	}
}

// CalculatePubKey 为SM2利用私钥推算公钥的函数，
// 利用标准库crypto/elliptic的ScalarBaseMult()方法根据基点G和倍数D推算公钥点。
func CalculatePubKey(priv *PrivateKey) *PublicKey {
	pub := new(PublicKey)
	pub.Curve = priv.Curve
	pub.X, pub.Y = priv.Curve.ScalarBaseMult(priv.D.Bytes())
	return pub
}

// RawBytesToPublicKey 将64字节的原始坐标数据转化为SM2公钥并校验。
func RawBytesToPublicKey(bytes []byte) (*PublicKey, error) {
	if len(bytes) != KeyBytes*2 {
		return nil, ErrInvalidEncoding
	}
	publicKey := new(PublicKey)
	publicKey.Curve = GetSm2P256V1()
	publicKey.X = new(big.Int).SetBytes(bytes[:KeyBytes])
	publicKey.Y = new(big.Int).SetBytes(bytes[KeyBytes:])
	if err := ValidatePublicKey(publicKey); err != nil {
		return nil, err
	}
	return publicKey, nil
}

// RawBytesToPrivateKey 将32字节的原始标量数据转化为SM2私钥并校验取值范围。
// 返回的私钥已包含推算出的公钥坐标。
func RawBytesToPrivateKey(bytes []byte) (*PrivateKey, error) {
	if len(bytes) != KeyBytes {
		return nil, ErrInvalidKey
	}
	privateKey := new(PrivateKey)
	privateKey.Curve = GetSm2P256V1()
	privateKey.D = new(big.Int).SetBytes(bytes)
	if err := ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}
	privateKey.X, privateKey.Y = privateKey.Curve.ScalarBaseMult(privateKey.D.Bytes())
	return privateKey, nil
}

// PrivateKeyFromHex 将16进制字符串形式的标量转化为SM2私钥并校验取值范围。
func PrivateKeyFromHex(in string) (*PrivateKey, error) {
	raw, err := util.HexToBytes(in)
	if err != nil {
		return nil, ErrInvalidKey
	}
	return RawBytesToPrivateKey(raw)
}

// GetRawBytes 为获得32字节定长大端格式存储的私钥标量的方法。
func (pri *PrivateKey) GetRawBytes() []byte {
	return util.FixedLengthBytes(pri.D, KeyBytes)
}

// GetRawBytes 为获得64字节定长坐标格式存储的公钥的方法(不带编码标识字节)。
func (pub *PublicKey) GetRawBytes() []byte {
	raw := make([]byte, KeyBytes*2)
	copy(raw[:KeyBytes], util.FixedLengthBytes(pub.X, KeyBytes))
	copy(raw[KeyBytes:], util.FixedLengthBytes(pub.Y, KeyBytes))
	return raw
}

// ValidatePublicKey 为公钥合法性校验函数（国标1-6.2）:
// (1) 公钥点不得为无穷远点O;
// (2) 坐标取值范围 0 <= X, Y < p;
// (3) 公钥点满足曲线方程;
// (4) 公钥点位于n阶子群，即 [n]P = O。
func ValidatePublicKey(pub *PublicKey) error {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return ErrMissingKey
	}
	curve := GetSm2P256V1()
	if util.IsEcPointInfinity(pub.X, pub.Y) {
		return ErrInvalidKey
	}
	if pub.X.Sign() < 0 || pub.X.Cmp(curve.P) >= 0 ||
		pub.Y.Sign() < 0 || pub.Y.Cmp(curve.P) >= 0 {
		return ErrInvalidKey
	}
	if !curve.IsOnCurve(pub.X, pub.Y) {
		return ErrNotOnCurve
	}
	nx, ny := curve.ScalarMult(pub.X, pub.Y, curve.N.Bytes())
	if !util.IsEcPointInfinity(nx, ny) {
		return ErrNotOnCurve
	}
	return nil
}

// ValidatePrivateKey 为私钥合法性校验函数，要求标量 1 <= D <= n-2。
// 上界取n-2而非n-1，确保签名运算中(1+D)在模n下的乘法逆元存在。
func ValidatePrivateKey(pri *PrivateKey) error {
	if pri == nil || pri.D == nil {
		return ErrMissingKey
	}
	curve := GetSm2P256V1()
	nMinus2 := util.Sub(curve.N, big.NewInt(2))
	if pri.D.Sign() <= 0 || pri.D.Cmp(nMinus2) > 0 {
		return ErrInvalidKey
	}
	return nil
}

// NewKeyPair 将可缺省的公钥和私钥组装为秘钥对并完成校验:
// (1) 公钥存在时，校验其合法性;
// (2) 私钥存在时，校验其取值范围;
// (3) 二者均存在时，校验 pub = [pri]G 的对应关系;
// (4) 仅私钥存在时，自动补齐推算出的公钥。
func NewKeyPair(pub *PublicKey, pri *PrivateKey) (*KeyPair, error) {
	if pub == nil && pri == nil {
		return nil, ErrMissingKey
	}
	if pub != nil {
		if err := ValidatePublicKey(pub); err != nil {
			return nil, err
		}
	}
	if pri != nil {
		if err := ValidatePrivateKey(pri); err != nil {
			return nil, err
		}
		pri.Curve = GetSm2P256V1()
		derived := CalculatePubKey(pri)
		if pub != nil {
			if pub.X.Cmp(derived.X) != 0 || pub.Y.Cmp(derived.Y) != 0 {
				return nil, ErrInvalidKey
			}
		} else {
			pub = derived
		}
		pri.X, pri.Y = derived.X, derived.Y
	}
	return &KeyPair{Pub: pub, Pri: pri}, nil
}
