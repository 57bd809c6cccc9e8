package sm2

import (
	"math/big"
	"strings"

	"github.com/Hyperledger-TWGC/node-gm/util"
)

// 公钥点字节串表示的首字节标识（国标1-4.2.9）。
const (
	// Infinity 代表无穷远点O的标识，作为公钥输入时一律拒绝。
	Infinity = 0x00
	// CompressEven 代表压缩表示形式且y坐标为偶数。
	CompressEven = 0x02
	// CompressOdd 代表压缩表示形式且y坐标为奇数。
	CompressOdd = 0x03
	// UnCompress 代表未压缩表示形式，x坐标与y坐标顺次完整存储。
	UnCompress = 0x04
	// MixEven 代表混合表示形式且y坐标为偶数，压缩与未压缩信息并存。
	MixEven = 0x06
	// MixOdd 代表混合表示形式且y坐标为奇数。
	MixOdd = 0x07
)

// 公钥点编码模式。
const (
	// ModeCompress 输出33字节压缩形式（标识0x02/0x03 + x坐标）。
	ModeCompress = "compress"
	// ModeNoCompress 输出65字节未压缩形式（标识0x04 + x坐标 + y坐标），为缺省模式。
	ModeNoCompress = "nocompress"
	// ModeMix 输出65字节混合形式（标识0x06/0x07 + x坐标 + y坐标）。
	ModeMix = "mix"
)

// EncodePoint 将公钥点按指定模式序列化为带标识字节的字节数组。
// mode为空字符串时按ModeNoCompress处理; 坐标均为32字节定长大端格式。
func (pub *PublicKey) EncodePoint(mode string) ([]byte, error) {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil, ErrMissingKey
	}
	xBytes := util.FixedLengthBytes(pub.X, KeyBytes)
	yBytes := util.FixedLengthBytes(pub.Y, KeyBytes)
	yOdd := pub.Y.Bit(0) == 1

	switch mode {
	case ModeCompress:
		raw := make([]byte, 1+KeyBytes)
		if yOdd {
			raw[0] = CompressOdd
		} else {
			raw[0] = CompressEven
		}
		copy(raw[1:], xBytes)
		return raw, nil
	case ModeNoCompress, "":
		raw := make([]byte, 1+KeyBytes*2)
		raw[0] = UnCompress
		copy(raw[1:1+KeyBytes], xBytes)
		copy(raw[1+KeyBytes:], yBytes)
		return raw, nil
	case ModeMix:
		raw := make([]byte, 1+KeyBytes*2)
		if yOdd {
			raw[0] = MixOdd
		} else {
			raw[0] = MixEven
		}
		copy(raw[1:1+KeyBytes], xBytes)
		copy(raw[1+KeyBytes:], yBytes)
		return raw, nil
	}
	return nil, ErrInvalidEncoding
}

// EncodePointHex 将公钥点序列化为小写16进制字符串，x与y坐标分别定长64个字符。
func (pub *PublicKey) EncodePointHex(mode string) (string, error) {
	raw, err := pub.EncodePoint(mode)
	if err != nil {
		return "", err
	}
	return util.BytesToHex(raw), nil
}

// DecodePoint 将带标识字节的字节数组反序列化为公钥点:
// (1) 标识0x00（无穷远点）和未定义的标识一律拒绝;
// (2) 压缩形式按曲线方程恢复y坐标，按标识的奇偶性选择平方根;
// (3) 混合形式携带完整y坐标，校验其奇偶性与标识一致后直接采信;
// (4) 解码出的点必须通过公钥合法性校验。
func DecodePoint(in []byte) (*PublicKey, error) {
	if len(in) < 1 {
		return nil, ErrInvalidEncoding
	}
	switch in[0] {
	case CompressEven, CompressOdd:
		if len(in) != 1+KeyBytes {
			return nil, ErrInvalidEncoding
		}
		return decodeCompressed(in[1:], in[0] == CompressOdd)
	case UnCompress:
		if len(in) != 1+KeyBytes*2 {
			return nil, ErrInvalidEncoding
		}
		return RawBytesToPublicKey(in[1:])
	case MixEven, MixOdd:
		if len(in) != 1+KeyBytes*2 {
			return nil, ErrInvalidEncoding
		}
		y := new(big.Int).SetBytes(in[1+KeyBytes:])
		if (y.Bit(0) == 1) != (in[0] == MixOdd) {
			return nil, ErrInvalidEncoding
		}
		return RawBytesToPublicKey(in[1:])
	}
	return nil, ErrInvalidEncoding
}

// DecodePointHex 将16进制字符串形式的公钥点解码，大小写不敏感。
func DecodePointHex(in string) (*PublicKey, error) {
	raw, err := util.HexToBytes(strings.TrimSpace(in))
	if err != nil {
		return nil, ErrInvalidEncoding
	}
	return DecodePoint(raw)
}

// decodeCompressed 为压缩形式公钥点的y坐标恢复函数:
// (1) 按曲线方程计算 y^2 = x^3 + ax + b (mod p);
// (2) 求模平方根，二次非剩余说明x不是曲线上任何点的横坐标;
// (3) 根据标识的奇偶性在两个根y与p-y之间选择，均不符时编码非法。
func decodeCompressed(xBytes []byte, yOdd bool) (*PublicKey, error) {
	curve := GetSm2P256V1()
	x := new(big.Int).SetBytes(xBytes)
	if x.Cmp(curve.P) >= 0 {
		return nil, ErrInvalidEncoding
	}

	// y^2 = x^3 + ax + b (mod p)
	y2 := util.Mul(x, x)
	y2 = util.Mod(util.Mul(y2, x), curve.P)
	y2 = util.Add(y2, util.Mul(curve.A, x))
	y2 = util.Mod(util.Add(y2, curve.B), curve.P)

	y := util.ModSqrt(y2, curve.P)
	if y == nil {
		return nil, ErrInvalidEncoding
	}
	if (y.Bit(0) == 1) != yOdd {
		y = util.Sub(curve.P, y)
	}
	if (y.Bit(0) == 1) != yOdd {
		return nil, ErrInvalidEncoding
	}

	publicKey := &PublicKey{X: x, Y: y, Curve: curve}
	if err := ValidatePublicKey(publicKey); err != nil {
		return nil, err
	}
	return publicKey, nil
}
