package ingress

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // G505: sha1 допускается протоколом WebSub
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"net/http"
	"strings"

	customerrors "github.com/central-university-dev/go-tubecord/internal/domain/errors"
)

const (
	SignatureHeader256 = "X-Hub-Signature-256"
	SignatureHeader    = "X-Hub-Signature"
)

// SignatureFromHeaders предпочитает заголовок с sha256.
func SignatureFromHeaders(headers http.Header) string {
	if signature := headers.Get(SignatureHeader256); signature != "" {
		return signature
	}

	return headers.Get(SignatureHeader)
}

// VerifySignature сверяет HMAC тела уведомления с заголовком вида "algo=hex".
// Без секрета проверка не выполняется.
func VerifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return nil
	}

	if signature == "" {
		return &customerrors.ErrSignatureMismatch{Reason: "отсутствует заголовок подписи"}
	}

	algo, provided, ok := strings.Cut(signature, "=")
	if !ok {
		return &customerrors.ErrSignatureMismatch{Reason: "некорректный формат заголовка подписи"}
	}

	var newHash func() hash.Hash

	switch strings.ToLower(algo) {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		newHash = sha1.New
	default:
		return &customerrors.ErrSignatureMismatch{Reason: "неподдерживаемый алгоритм: " + algo}
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(body)

	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		return &customerrors.ErrSignatureMismatch{Reason: "подпись не совпадает"}
	}

	return nil
}

// Sign вычисляет заголовок подписи sha256 для тела.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
