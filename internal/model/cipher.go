package model

// Cipher encrypts and decrypts personal data under per-subject keys.
type Cipher interface {
	Encrypt(plaintext []byte, key string) ([]byte, error)
	Decrypt(ciphertext []byte, key string) ([]byte, error)
}

// KeyGenerator produces fresh key material in a store-compatible encoding.
type KeyGenerator interface {
	GenerateKey() (string, error)
}
