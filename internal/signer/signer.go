package signer

// Signer signs comparison reports
type Signer interface {
	// SignDetached creates an armored detached signature (written as <report>.asc)
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
