package sadad

import (
	"bytes"
	"crypto/des"
	"encoding/base64"
	"errors"
)

var ErrInvalidKey = errors.New("INVALID_TRANSACTION_KEY")

// SignData encrypts data with TripleDES in ECB mode and PKCS#7 padding, the
// scheme Sadad uses for its SignData field. key is the base64 merchant key.
func SignData(key, data string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil || len(raw) != 24 {
		return "", ErrInvalidKey
	}

	block, err := des.NewTripleDESCipher(raw)
	if err != nil {
		return "", err
	}

	size := block.BlockSize()
	pad := size - len(data)%size
	plain := append([]byte(data), bytes.Repeat([]byte{byte(pad)}, pad)...)

	out := make([]byte, len(plain))
	for i := 0; i < len(plain); i += size {
		block.Encrypt(out[i:i+size], plain[i:i+size])
	}

	return base64.StdEncoding.EncodeToString(out), nil
}
