package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"math/big"
)

const (
	// casTokenLength is the length of the CAS correlation token
	casTokenLength = 17

	// oauthTokenLength is the length of the OAuth credential token
	oauthTokenLength = 40
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateRandomString generates a cryptographically secure alphanumeric string.
func generateRandomString(length int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tokenAlphabet[n.Int64()]
	}
	return string(out), nil
}

// oauthStatePayload is the state parameter the chat server expects back
// from the provider redirect.
type oauthStatePayload struct {
	LoginStyle      string `json:"loginStyle"`
	CredentialToken string `json:"credentialToken"`
	IsCordova       bool   `json:"isCordova"`
}

// encodeOAuthState returns the base64 encoded popup state for credentialToken.
func encodeOAuthState(credentialToken string) (string, error) {
	data, err := json.Marshal(oauthStatePayload{
		LoginStyle:      "popup",
		CredentialToken: credentialToken,
		IsCordova:       true,
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// decodeOAuthState extracts the credential token from an encoded state.
func decodeOAuthState(state string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return "", err
	}
	var payload oauthStatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	return payload.CredentialToken, nil
}
