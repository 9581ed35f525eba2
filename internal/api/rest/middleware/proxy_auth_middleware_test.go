package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"
)

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyProxySignature(t *testing.T) {
	secret := "hush"

	// Keys sorted, multi-values comma-joined, pairs concatenated bare
	payload := "logged_in_customer_id=123path_prefix=/apps/proxyshop=test-shop.myshopify.comtimestamp=1756380000"

	query := url.Values{
		"shop":                  {"test-shop.myshopify.com"},
		"path_prefix":           {"/apps/proxy"},
		"timestamp":             {"1756380000"},
		"logged_in_customer_id": {"123"},
		"signature":             {sign(payload, secret)},
	}

	if !VerifyProxySignature(query, secret) {
		t.Fatal("valid signature rejected")
	}

	query.Set("timestamp", "1756380001")
	if VerifyProxySignature(query, secret) {
		t.Fatal("tampered query accepted")
	}
}

func TestVerifyProxySignatureMultiValue(t *testing.T) {
	secret := "hush"

	payload := "ids=1,2,3shop=test-shop.myshopify.com"

	query := url.Values{
		"ids":       {"1", "2", "3"},
		"shop":      {"test-shop.myshopify.com"},
		"signature": {sign(payload, secret)},
	}

	if !VerifyProxySignature(query, secret) {
		t.Fatal("multi-value signature rejected")
	}
}

func TestVerifyProxySignatureMissing(t *testing.T) {
	query := url.Values{"shop": {"test-shop.myshopify.com"}}

	if VerifyProxySignature(query, "hush") {
		t.Fatal("request without signature accepted")
	}
	if VerifyProxySignature(url.Values{"signature": {"abc"}}, "") {
		t.Fatal("empty secret accepted")
	}
}
