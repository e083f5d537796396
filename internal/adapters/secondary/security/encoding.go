package security

import (
	"encoding/base64"
	"math/big"
)

func base64URLBigInt(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func bigIntFromInt(i int) *big.Int {
	return big.NewInt(int64(i))
}
