package cos

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for rendezvous ids and secrets: Bitcoin-style base58, excluding
// the visually ambiguous '0', 'O', 'I', 'l'.
const TokenAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// CryptoRandS draws n characters uniformly from TokenAlphabet using
// crypto/rand. Ids and secrets are capabilities, not merely identifiers, so
// unlike internally-facing node/daemon ids a fast non-cryptographic
// generator is not an option here.
func CryptoRandS(n int) string {
	abcLen := big.NewInt(int64(len(TokenAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, abcLen)
		if err != nil {
			// crypto/rand failing is a fatal environment error, not a
			// recoverable one -- there is no sane fallback for a capability
			// token generator.
			panic("cos: crypto/rand unavailable: " + err.Error())
		}
		b[i] = TokenAlphabet[idx.Int64()]
	}
	return string(b)
}
