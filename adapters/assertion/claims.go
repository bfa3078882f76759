package assertion

import "github.com/golang-jwt/jwt/v5"

// Claims combines standard claims with the per-call replay nonce the
// provider token endpoint requires.
type Claims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce"`
}
