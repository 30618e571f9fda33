package utils

import (
	"crypto/rand"
	"fmt"
)

// idAlphabet avoids ambiguous characters (0/O, 1/I/L) in generated codes.
const idAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const idLength = 10

// GenerateID returns a prefixed random identifier such as "REQ-7K2MWQ94XC".
func GenerateID(prefix string) string {
	buf := make([]byte, idLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; panic loudly if it does
		panic(fmt.Sprintf("id generation failed: %v", err))
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return prefix + "-" + string(buf)
}
