package activity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const (
	tagSeedDigitCountConstant        = 24
	decimalDigitSpanConstant         = 10
	randomDigitsFailureTemplate      = "generating random digits: %w"
	millisecondTimestampBaseConstant = 10
)

// CommitMessageForTimestamp derives a commit message from the supplied moment.
// The message is the hexadecimal SHA-256 digest of the decimal millisecond
// timestamp.
func CommitMessageForTimestamp(moment time.Time) string {
	millisecondTimestamp := strconv.FormatInt(moment.UnixMilli(), millisecondTimestampBaseConstant)
	timestampDigest := sha256.Sum256([]byte(millisecondTimestamp))
	return hex.EncodeToString(timestampDigest[:])
}

// TagNameFromDigits derives a tag name from a digit string. The name is the
// hexadecimal SHA-512 digest of the digits.
func TagNameFromDigits(digits string) string {
	digitsDigest := sha512.Sum512([]byte(digits))
	return hex.EncodeToString(digitsDigest[:])
}

// RandomTagSeed produces the 24 digit random string that seeds a tag name.
func RandomTagSeed() (string, error) {
	return randomDigits(tagSeedDigitCountConstant)
}

func randomDigits(digitCount int) (string, error) {
	digitSpan := big.NewInt(decimalDigitSpanConstant)
	digits := make([]byte, digitCount)
	for digitIndex := range digits {
		randomDigit, randomError := rand.Int(rand.Reader, digitSpan)
		if randomError != nil {
			return "", fmt.Errorf(randomDigitsFailureTemplate, randomError)
		}
		digits[digitIndex] = byte('0' + randomDigit.Int64())
	}
	return string(digits), nil
}
