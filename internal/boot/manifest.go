// Package boot implements boot-time integrity verification: a
// SHA-256/HMAC manifest over the trust-root files, generated and
// checked before the runtime ever serves a turn.
package boot

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	manifestVersion  = 1
	pbkdf2Iterations = 200_000
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// Entry is one trust-root file's recorded digest.
type Entry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// Manifest is the on-disk integrity record covering every trust-root
// file. HMAC covers the canonical (lexicographically path-ordered)
// serialization of Entries.
type Manifest struct {
	Version    int       `json:"version"`
	CreatedUTC time.Time `json:"created_utc"`
	Entries    []Entry   `json:"entries"`
	Salt       string    `json:"salt"`
	Iterations int       `json:"iterations"`
	HMAC       string    `json:"hmac"`
}

// Generate computes SHA-256 of each trust-root file, derives an
// HMAC key from passphrase via PBKDF2, and returns the signed
// manifest. passphrase is never persisted; only salt+iterations are.
func Generate(trustRoots []string, passphrase string) (*Manifest, error) {
	entries := make([]Entry, 0, len(trustRoots))
	for _, path := range trustRoots {
		sum, err := sha256File(path)
		if err != nil {
			return nil, fmt.Errorf("boot: hashing trust root %s: %w", path, err)
		}
		entries = append(entries, Entry{Path: path, SHA256: sum})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("boot: generating salt: %w", err)
	}

	m := &Manifest{
		Version:    manifestVersion,
		CreatedUTC: time.Now().UTC(),
		Entries:    entries,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Iterations: pbkdf2Iterations,
	}

	tag, err := sign(entries, passphrase, salt, pbkdf2Iterations)
	if err != nil {
		return nil, err
	}
	m.HMAC = base64.StdEncoding.EncodeToString(tag)
	return m, nil
}

// Verify recomputes each trust-root file's digest and the HMAC tag,
// returning an error naming the first mismatching path (or "hmac" for
// a tampered manifest itself) on failure.
func (m *Manifest) Verify(passphrase string) error {
	salt, err := base64.StdEncoding.DecodeString(m.Salt)
	if err != nil {
		return fmt.Errorf("boot: invalid manifest salt: %w", err)
	}

	for _, e := range m.Entries {
		sum, err := sha256File(e.Path)
		if err != nil {
			return fmt.Errorf("boot: trust root %s: %w", e.Path, err)
		}
		if sum != e.SHA256 {
			return fmt.Errorf("boot: trust root %s: digest mismatch", e.Path)
		}
	}

	wantTag, err := base64.StdEncoding.DecodeString(m.HMAC)
	if err != nil {
		return fmt.Errorf("boot: invalid manifest hmac encoding: %w", err)
	}
	gotTag, err := sign(m.Entries, passphrase, salt, m.Iterations)
	if err != nil {
		return err
	}
	if !hmac.Equal(wantTag, gotTag) {
		return fmt.Errorf("boot: manifest hmac mismatch (tampered manifest or wrong passphrase)")
	}
	return nil
}

// Load reads and JSON-decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boot: reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("boot: parsing manifest: %w", err)
	}
	return &m, nil
}

// Save JSON-encodes and writes a manifest file.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("boot: encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func sign(entries []Entry, passphrase string, salt []byte, iterations int) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	canonical, err := json.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("boot: canonicalizing entries: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, iterations, pbkdf2KeyLen, sha256.New)
	mac := hmac.New(sha256.New, key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

func sha256File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
