package asanpardakht

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
)

var ErrInvalidCipherText = errors.New("INVALID_CIPHER_TEXT")

// Cipher is AES-256-CBC with PKCS#7 padding over base64 text.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

// NewCipher takes the base64 merchant key (32 bytes) and IV (16 bytes).
func NewCipher(key, iv string) (*Cipher, error) {
	rawKey, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, err
	}
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(rawKey)
	if err != nil {
		return nil, err
	}
	if len(rawIV) != block.BlockSize() {
		return nil, errors.New("iv length must equal block size")
	}

	return &Cipher{block: block, iv: rawIV}, nil
}

func (c *Cipher) Encrypt(plain string) string {
	size := c.block.BlockSize()
	pad := size - len(plain)%size
	data := append([]byte(plain), bytes.Repeat([]byte{byte(pad)}, pad)...)

	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, data)
	return base64.StdEncoding.EncodeToString(out)
}

func (c *Cipher) Decrypt(text string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return "", err
	}

	size := c.block.BlockSize()
	if len(data) == 0 || len(data)%size != 0 {
		return "", ErrInvalidCipherText
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, data)

	pad := int(out[len(out)-1])
	if pad == 0 || pad > size || pad > len(out) {
		return "", ErrInvalidCipherText
	}
	for _, b := range out[len(out)-pad:] {
		if int(b) != pad {
			return "", ErrInvalidCipherText
		}
	}

	return string(out[:len(out)-pad]), nil
}
