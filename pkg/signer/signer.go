// Package signer loads merchant RSA keys and produces the SHA-1 PKCS#1 v1.5
// signatures Iranian PSPs expect on their canonical request strings.
package signer

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/beevik/etree"
)

var ErrUnsupportedKey = errors.New("UNSUPPORTED_KEY")

type Signer struct {
	key *rsa.PrivateKey
}

func New(key *rsa.PrivateKey) *Signer {
	return &Signer{key: key}
}

// Load reads a PEM (PKCS#1 or PKCS#8) or .NET <RSAKeyValue> XML private key file.
func Load(path string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	key, err := ParsePrivateKey(data)
	if err != nil {
		return nil, err
	}
	return New(key), nil
}

func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return parseXMLKey(trimmed)
	}
	return parsePEMKey(trimmed)
}

func parsePEMKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, ErrUnsupportedKey
		}
		return rsaKey, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, block.Type)
	}
}

func parseXMLKey(data []byte) (*rsa.PrivateKey, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse xml key: %w", err)
	}

	root := doc.FindElement("//RSAKeyValue")
	if root == nil {
		return nil, fmt.Errorf("%w: RSAKeyValue element not found", ErrUnsupportedKey)
	}

	read := func(name string) (*big.Int, error) {
		el := root.SelectElement(name)
		if el == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrUnsupportedKey, name)
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(el.Text()))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return new(big.Int).SetBytes(raw), nil
	}

	names := []string{"Modulus", "Exponent", "D", "P", "Q"}
	values := make(map[string]*big.Int, len(names))
	for _, name := range names {
		v, err := read(name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: values["Modulus"], E: int(values["Exponent"].Int64())},
		D:         values["D"],
		Primes:    []*big.Int{values["P"], values["Q"]},
	}
	key.Precompute()
	if err := key.Validate(); err != nil {
		return nil, err
	}

	return key, nil
}

// Sign hashes data with SHA-1 and signs it with PKCS#1 v1.5.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	digest := sha1.Sum(data)
	return rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA1, digest[:])
}

// SignString returns the base64 signature of data, the form banks put in a "sign" field.
func (s *Signer) SignString(data string) (string, error) {
	sig, err := s.Sign([]byte(data))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Public returns the key that Verify accepts for signatures from s.
func (s *Signer) Public() *rsa.PublicKey {
	return &s.key.PublicKey
}

// Verify checks a base64 signature produced by SignString.
func Verify(pub *rsa.PublicKey, data, signature string) error {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return err
	}
	digest := sha1.Sum([]byte(data))
	return rsa.VerifyPKCS1v15(pub, crypto.SHA1, digest[:], sig)
}
