package runner

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Signer computes the action-API request signature: PublicKey joins the
// body, every key/value pair is concatenated in sorted key order, the
// PrivateKey is appended, and the SHA1 hex digest becomes the Signature
// parameter. The PrivateKey itself never travels.
type Signer struct {
	PublicKey  string
	PrivateKey string
}

// Apply adds PublicKey and Signature to params in place and returns the
// computed signature.
func (s *Signer) Apply(params map[string]interface{}) string {
	params["PublicKey"] = s.PublicKey
	sig := s.sign(params)
	params["Signature"] = sig
	return sig
}

func (s *Signer) sign(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "Signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(fmt.Sprint(params[k]))
	}
	b.WriteString(s.PrivateKey)

	digest := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(digest[:])
}
