// Package sealbox encrypts and decrypts env files at rest.
//
// A sealed file is "SENV", a format version byte, a random PBKDF2 salt, a GCM
// nonce and the AES-256-GCM ciphertext. The AES key is derived from the
// 64-character encryption key, so any tampering or a wrong key fails
// authentication instead of yielding garbage plaintext.
//
// Example:
//
//	sealed, err := sealbox.Encrypt([]byte("PORT=8080\n"), key)
//	plain, err := sealbox.Box{}.DecryptFile("app.env.enc", key)
package sealbox
