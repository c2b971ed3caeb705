package services

import (
	"math/rand"
	"strings"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRedemptionCode produces a code of the form XXXX-XXXX-XXXX over
// [A-Z0-9]. 36^12 possible codes make a collision astronomically unlikely;
// the unique index on reward_redemptions.redemption_code is the backstop,
// and the orchestrator regenerates on a duplicate-key insert.
func GenerateRedemptionCode() string {
	var b strings.Builder
	b.Grow(14)
	for segment := 0; segment < 3; segment++ {
		if segment > 0 {
			b.WriteByte('-')
		}
		for i := 0; i < 4; i++ {
			b.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
		}
	}
	return b.String()
}
