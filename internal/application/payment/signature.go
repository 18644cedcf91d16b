package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex HMAC-SHA256 of "orderRef|paymentRef" under secret,
// the value the checkout flow hands back to the seller.
func Sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. The comparison is on the exact
// hex text, so a change of letter case is a mismatch too.
func VerifySignature(secret, orderRef, paymentRef, signature string) bool {
	expected := Sign(secret, orderRef, paymentRef)
	return hmac.Equal([]byte(expected), []byte(signature))
}
