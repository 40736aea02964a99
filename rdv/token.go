package rdv

import "github.com/aistorelabs/rendezvous/cmn/cos"

// NewToken draws one random string of length n from the relay's 58-symbol
// alphabet, suitable as either an id or a secret -- neither is derived from
// the other (§4.1).
func NewToken(n int) string { return cos.CryptoRandS(n) }
