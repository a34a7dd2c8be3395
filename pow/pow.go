package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	// Difficulty is the number of leading zero hex digits a proof hash must
	// have. It is part of the chain validity rule and therefore not tunable at
	// runtime: every peer has to agree on it.
	Difficulty = 4

	// number of candidates tried between two context checks
	cancelCheckInterval = 1024
)

var proofPrefix = strings.Repeat("0", Difficulty)

// ValidProof reports whether sha256(lastProof || proof || lastHash), with the
// proofs written in decimal, has Difficulty leading zero hex digits.
func ValidProof(lastProof, proof uint64, lastHash string) bool {
	return validGuess(appendGuess(nil, lastProof, proof, lastHash))
}

// Mine returns the smallest proof p such that ValidProof(lastProof, p,
// lastHash) holds.
func Mine(lastProof uint64, lastHash string) uint64 {
	proof, _ := MineContext(context.Background(), lastProof, lastHash)
	return proof
}

// MineContext is Mine with cooperative cancellation. It returns ctx.Err() if
// ctx is done before a proof is found.
func MineContext(ctx context.Context, lastProof uint64, lastHash string) (uint64, error) {
	prefix := strconv.AppendUint(nil, lastProof, 10)
	buf := make([]byte, 0, len(prefix)+20+len(lastHash))

	for proof := uint64(0); ; proof++ {
		if proof%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			default:
			}
		}

		buf = append(buf[:0], prefix...)
		buf = strconv.AppendUint(buf, proof, 10)
		buf = append(buf, lastHash...)
		if validGuess(buf) {
			return proof, nil
		}
	}
}

func appendGuess(buf []byte, lastProof, proof uint64, lastHash string) []byte {
	buf = strconv.AppendUint(buf, lastProof, 10)
	buf = strconv.AppendUint(buf, proof, 10)
	return append(buf, lastHash...)
}

func validGuess(guess []byte) bool {
	sum := sha256.Sum256(guess)
	return strings.HasPrefix(hex.EncodeToString(sum[:]), proofPrefix)
}
