// Package crypto signs and verifies rule pack payloads as detached
// RS256 JWS objects carrying the signer certificate in the x5c header.
package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
)

type JWS struct {
	Protected string `json:"protected"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type jwsHeader struct {
	Alg string   `json:"alg"`
	Typ string   `json:"typ,omitempty"`
	X5C []string `json:"x5c,omitempty"`
}

// SignDetachedJWS signs payload with the PEM encoded RSA private key and
// embeds the PEM encoded signer certificate in the protected header.
func SignDetachedJWS(payload, privateKeyPEM, certPEM []byte) (JWS, error) {
	cert, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return JWS{}, fmt.Errorf("parse signer certificate: %w", err)
	}
	hdr := jwsHeader{
		Alg: "RS256",
		Typ: "JWT",
		X5C: []string{base64.StdEncoding.EncodeToString(cert.Raw)},
	}
	hb, err := json.Marshal(hdr)
	if err != nil {
		return JWS{}, err
	}
	protected := base64.RawURLEncoding.EncodeToString(hb)
	pl := base64.RawURLEncoding.EncodeToString(payload)

	priv, err := parseRSAPrivateKey(privateKeyPEM)
	if err != nil {
		return JWS{}, err
	}

	h := sha256.Sum256([]byte(protected + "." + pl))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, h[:])
	if err != nil {
		return JWS{}, err
	}

	return JWS{
		Protected: protected,
		Payload:   pl,
		Signature: base64.RawURLEncoding.EncodeToString(sig),
	}, nil
}

// VerifyDetachedJWSWithX5C checks the signature over payload against the
// certificate carried in the x5c header and verifies that certificate
// against the trust pool. It returns the signer certificate on success.
func VerifyDetachedJWSWithX5C(payload []byte, jws JWS, pool *x509.CertPool) (*x509.Certificate, error) {
	hb, err := base64.RawURLEncoding.DecodeString(jws.Protected)
	if err != nil {
		return nil, fmt.Errorf("decode protected header: %w", err)
	}
	var hdr jwsHeader
	if err := json.Unmarshal(hb, &hdr); err != nil {
		return nil, fmt.Errorf("parse protected header: %w", err)
	}
	if hdr.Alg != "RS256" {
		return nil, fmt.Errorf("unsupported algorithm %q", hdr.Alg)
	}
	if len(hdr.X5C) == 0 {
		return nil, errors.New("no x5c certificate in header")
	}
	der, err := base64.StdEncoding.DecodeString(hdr.X5C[0])
	if err != nil {
		return nil, fmt.Errorf("decode x5c certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse x5c certificate: %w", err)
	}
	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		return nil, fmt.Errorf("untrusted signer: %w", err)
	}

	pl := base64.RawURLEncoding.EncodeToString(payload)
	if jws.Payload != "" && jws.Payload != pl {
		return nil, errors.New("payload does not match signature")
	}
	sig, err := base64.RawURLEncoding.DecodeString(jws.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("signer certificate does not carry an RSA key")
	}
	h := sha256.Sum256([]byte(jws.Protected + "." + pl))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig); err != nil {
		return nil, fmt.Errorf("signature mismatch: %w", err)
	}
	return cert, nil
}

// VerifyDetachedJWS checks the signature over payload against the PEM
// encoded signer certificate directly, without a trust pool.
func VerifyDetachedJWS(payload []byte, jws JWS, certPEM []byte) error {
	cert, err := ParseCertificatePEM(certPEM)
	if err != nil {
		return fmt.Errorf("parse signer certificate: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return errors.New("signer certificate does not carry an RSA key")
	}
	pl := base64.RawURLEncoding.EncodeToString(payload)
	if jws.Payload != "" && jws.Payload != pl {
		return errors.New("payload does not match signature")
	}
	sig, err := base64.RawURLEncoding.DecodeString(jws.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	h := sha256.Sum256([]byte(jws.Protected + "." + pl))
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], sig); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}
	return nil
}

// ParseCertificatePEM decodes the first CERTIFICATE block in pemBytes.
func ParseCertificatePEM(pemBytes []byte) (*x509.Certificate, error) {
	rest := pemBytes
	for len(rest) > 0 {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		return x509.ParseCertificate(block.Bytes)
	}
	return nil, errors.New("no certificate pem block")
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no pem block")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("not an rsa private key")
	}
	return rsaKey, nil
}
