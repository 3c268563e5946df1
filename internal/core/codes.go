package core

import (
	"crypto/rand"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/anmol0706/kalov/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateCode produces a fresh room code: eight characters from [A-Z0-9]
// with a hyphen after the fourth, e.g. "7KQ2-M0XA".
func generateCode() domain.RoomCode {
	buf := make([]byte, 9)
	for i := range buf {
		if i == 4 {
			buf[i] = '-'
			continue
		}
		buf[i] = codeAlphabet[randomIndex(len(codeAlphabet))]
	}
	return domain.RoomCode(buf)
}

// randomIndex returns a cryptographically secure random index in [0, max).
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand failing means the process has no entropy source at
		// all; room creation cannot proceed.
		log.Panic().Err(err).Msg("failed to generate random index")
	}
	return int(n.Int64())
}
