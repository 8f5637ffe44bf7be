package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// maxPasswordLength bounds hashed input; it matches the registration rule.
const maxPasswordLength = 1024

// hashParams are the argon2id cost settings recorded in every hash.
type hashParams struct {
	memory    uint32 // KiB
	passes    uint32
	lanes     uint8
	saltLen   int
	keyLength uint32
}

// defaultParams follow the OWASP argon2id minimum: 19 MiB, two passes, one lane.
var defaultParams = hashParams{
	memory:    19 * 1024,
	passes:    2,
	lanes:     1,
	saltLen:   16,
	keyLength: 32,
}

var b64 = base64.RawStdEncoding

// HashPassword returns the PHC string
// "$argon2id$v=19$m=<mem>,t=<passes>,p=<lanes>$<salt>$<key>" for password.
func HashPassword(password string) (string, error) {
	switch {
	case password == "":
		return "", errors.New("password cannot be empty")
	case len(password) > maxPasswordLength:
		return "", errors.New("password exceeds maximum length")
	}

	p := defaultParams
	salt := make([]byte, p.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.lanes, p.keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.passes, p.lanes,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encoded. A hash that does
// not parse counts as a mismatch.
func VerifyPassword(encoded, password string) (bool, error) {
	if len(password) > maxPasswordLength {
		return false, nil
	}

	p, salt, key, err := parseHash(encoded)
	if err != nil {
		return false, nil //nolint:nilerr // a bad hash is a failed login
	}

	candidate := argon2.IDKey([]byte(password), salt, p.passes, p.memory, p.lanes, p.keyLength)
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}

func parseHash(encoded string) (hashParams, []byte, []byte, error) {
	var p hashParams

	// "", "argon2id", "v=..", "m=..,t=..,p=..", salt, key
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return p, nil, nil, errors.New("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %q", fields[2])
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.passes, &p.lanes); err != nil {
		return p, nil, nil, fmt.Errorf("parse cost parameters: %w", err)
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) == 0 {
		return p, nil, nil, errors.New("empty key")
	}

	p.saltLen = len(salt)
	p.keyLength = uint32(len(key)) //nolint:gosec // decoded from a short string
	return p, salt, key, nil
}
