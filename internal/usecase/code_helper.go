package usecase

import (
	"crypto/rand"
	"io"
)

// GenerateBuyerCode creates a random buyer code in the printed format:
// '#' followed by five characters. The charset avoids ambiguous glyphs like
// O/0 and I/1 so codes survive being read off a sticker.
func GenerateBuyerCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLength = 5

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return "#" + string(buffer), nil
}
