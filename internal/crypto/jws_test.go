package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

func testKeyAndCert(t *testing.T, cn string) (keyPEM, certPEM []byte, cert *x509.Certificate) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err = x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return keyPEM, certPEM, cert
}

func TestSignAndVerifyDetachedJWS(t *testing.T) {
	keyPEM, certPEM, cert := testKeyAndCert(t, "rulepack signer")
	payload := []byte(`{"rulePackId":"dlt-core","version":"1.0.0"}`)

	jws, err := SignDetachedJWS(payload, keyPEM, certPEM)
	if err != nil {
		t.Fatalf("SignDetachedJWS: %v", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)
	got, err := VerifyDetachedJWSWithX5C(payload, jws, pool)
	if err != nil {
		t.Fatalf("VerifyDetachedJWSWithX5C: %v", err)
	}
	if got.Subject.CommonName != "rulepack signer" {
		t.Errorf("signer = %q", got.Subject.CommonName)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	keyPEM, certPEM, cert := testKeyAndCert(t, "signer")
	payload := []byte(`{"rulePackId":"dlt-core"}`)

	jws, err := SignDetachedJWS(payload, keyPEM, certPEM)
	if err != nil {
		t.Fatalf("SignDetachedJWS: %v", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(cert)
	tampered := []byte(`{"rulePackId":"dlt-evil"}`)
	if _, err := VerifyDetachedJWSWithX5C(tampered, jws, pool); err == nil {
		t.Fatal("tampered payload verified")
	}

	// Detached form without the embedded payload field.
	jws.Payload = ""
	if _, err := VerifyDetachedJWSWithX5C(payload, jws, pool); err != nil {
		t.Fatalf("detached verify: %v", err)
	}
	if _, err := VerifyDetachedJWSWithX5C(tampered, jws, pool); err == nil {
		t.Fatal("tampered detached payload verified")
	}
}

func TestVerifyRejectsUntrustedSigner(t *testing.T) {
	keyPEM, certPEM, _ := testKeyAndCert(t, "signer")
	_, _, other := testKeyAndCert(t, "other root")

	jws, err := SignDetachedJWS([]byte("payload"), keyPEM, certPEM)
	if err != nil {
		t.Fatalf("SignDetachedJWS: %v", err)
	}

	pool := x509.NewCertPool()
	pool.AddCert(other)
	if _, err := VerifyDetachedJWSWithX5C([]byte("payload"), jws, pool); err == nil {
		t.Fatal("untrusted signer verified")
	}
}
