// Package pack reads and writes .deck files: a ZIP archive holding the
// native presentation document, optionally password protected, next to an
// always readable metadata entry for listings.
package pack

import (
	"archive/zip"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/scrypt"

	"slidedeck/model"
	"slidedeck/native"
)

const (
	presentationFileName = "presentation.json"
	metadataFileName     = "metadata.json"
	encryptionMagic      = "DECKENC" // marks an encrypted presentation entry
	scryptN              = 32768
	scryptR              = 8
	scryptP              = 1
	scryptKeyLen         = 32 // AES-256
	saltLen              = 32
)

// Extension is the file extension of deck packages.
const Extension = ".deck"

var (
	ErrInvalidPack      = errors.New("invalid deck package or missing presentation.json")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordRequired = errors.New("file is encrypted, password required")
)

// Metadata is stored unencrypted so a package can be listed without the
// password.
type Metadata struct {
	Title      string `json:"title"`
	SlideCount int    `json:"slideCount"`
	Created    string `json:"created"`
	Encrypted  bool   `json:"encrypted"`
}

// Pack encodes p and writes it into a package. When password is not empty
// the presentation entry is encrypted with AES-256-GCM.
func Pack(p model.Presentation, title, password string, now time.Time) ([]byte, error) {
	doc, err := native.EncodeAt(p, now)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create(presentationFileName)
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("create zip entry: %w", err)
	}
	payload := doc
	if password != "" {
		payload, err = encryptData(doc, password)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("encrypt data: %w", err)
		}
	}
	if _, err := w.Write(payload); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write zip entry: %w", err)
	}

	meta := Metadata{
		Title:      title,
		SlideCount: p.Len(),
		Created:    now.UTC().Format(native.TimeLayout),
		Encrypted:  password != "",
	}
	mw, err := zw.Create(metadataFileName)
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("create metadata entry: %w", err)
	}
	metaBytes, _ := json.MarshalIndent(meta, "", "  ")
	if _, err := mw.Write(metaBytes); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write metadata entry: %w", err)
	}

	// Close explicitly so a failure to write the central directory is reported.
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads the presentation out of a package. An unencrypted package
// ignores the password.
func Unpack(data []byte, password string) (model.Presentation, error) {
	doc, err := readEntry(data, presentationFileName)
	if err != nil {
		return model.Presentation{}, err
	}
	if isDataEncrypted(doc) {
		if password == "" {
			return model.Presentation{}, ErrPasswordRequired
		}
		if doc, err = decryptData(doc, password); err != nil {
			return model.Presentation{}, err
		}
	}
	return native.Decode(doc)
}

// ReadMetadata returns the listing metadata of a package. The encrypted flag
// is taken from the presentation entry itself, not from the metadata.
func ReadMetadata(data []byte) (Metadata, error) {
	doc, err := readEntry(data, presentationFileName)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	raw, err := readEntry(data, metadataFileName)
	if err == nil {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return Metadata{}, fmt.Errorf("%w: metadata: %v", ErrInvalidPack, err)
		}
	}
	meta.Encrypted = isDataEncrypted(doc)
	if err != nil && !meta.Encrypted {
		// Older packages without a metadata entry: derive it from the document.
		d, derr := native.DecodeDocument(doc)
		if derr != nil {
			return Metadata{}, derr
		}
		meta.SlideCount = len(d.Slides)
		meta.Created = d.Created
	}
	return meta, nil
}

// IsEncrypted reports whether the package needs a password.
func IsEncrypted(data []byte) (bool, error) {
	doc, err := readEntry(data, presentationFileName)
	if err != nil {
		return false, err
	}
	return isDataEncrypted(doc), nil
}

// WriteFile packs p into path.
func WriteFile(path string, p model.Presentation, title, password string) error {
	data, err := Pack(p, title, password, time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write package: %w", err)
	}
	return nil
}

// ReadFile unpacks the package at path.
func ReadFile(path, password string) (model.Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Presentation{}, fmt.Errorf("read package: %w", err)
	}
	return Unpack(data, password)
}

func readEntry(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPack, err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, ErrInvalidPack
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
}

func isDataEncrypted(data []byte) bool {
	return len(data) >= len(encryptionMagic) && string(data[:len(encryptionMagic)]) == encryptionMagic
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// encryptData seals plaintext with a key derived from password.
// Format: DECKENC (7 bytes) | salt (32 bytes) | nonce (12 bytes) | ciphertext
func encryptData(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(encryptionMagic)
	buf.Write(salt)
	buf.Write(nonce)
	buf.Write(gcm.Seal(nil, nonce, plaintext, nil))
	return buf.Bytes(), nil
}

// decryptData opens data sealed by encryptData. A failed authentication is
// reported as ErrWrongPassword.
func decryptData(data []byte, password string) ([]byte, error) {
	magicLen := len(encryptionMagic)
	if len(data) < magicLen+saltLen+12 {
		return nil, ErrInvalidPack
	}
	salt := data[magicLen : magicLen+saltLen]
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonceStart := magicLen + saltLen
	nonceEnd := nonceStart + gcm.NonceSize()
	if len(data) < nonceEnd {
		return nil, ErrInvalidPack
	}
	plaintext, err := gcm.Open(nil, data[nonceStart:nonceEnd], data[nonceEnd:], nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}
