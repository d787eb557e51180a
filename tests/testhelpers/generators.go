package testhelpers

import (
	"fmt"
	"math/rand"
	"time"

	uuid "github.com/nu7hatch/gouuid"
)

// generates a new random number generator seeded with the current time
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Generates a valid random app id.
func GenAppID() string {
	id, _ := uuid.NewV4()
	return fmt.Sprintf("app-%s", id.String())
}

// Generates a valid random task id for an app.
func GenTaskID(appID string) string {
	id, _ := uuid.NewV4()
	return fmt.Sprintf("%s.%s", appID, id.String())
}

// Generates an AlphaNumericString of random length (0, 21]
func GenRandomAlphaNumericString(rng *rand.Rand) string {
	length := rng.Intn(21) + 1
	chars := []rune("0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		result[i] = chars[rng.Intn(len(chars))]
	}
	return string(result)
}
