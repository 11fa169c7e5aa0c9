package moedaapi

import (
	"crypto/rand"
	"math/big"
)

const (
	couponAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CouponLength is the number of characters in a redemption code.
	CouponLength = 12
)

// NewCouponCode returns a random code over A-Z and 0-9.
func NewCouponCode() (string, error) {
	limit := big.NewInt(int64(len(couponAlphabet)))
	buf := make([]byte, CouponLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = couponAlphabet[n.Int64()]
	}
	return string(buf), nil
}
