package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallbackObjectName(t *testing.T) {
	at := time.Date(2024, 6, 15, 23, 30, 0, 5, time.FixedZone("AST", 3*3600))

	assert.Equal(t, "callbacks/2024/06/15/H123-1718483400000000005.json", callbackObjectName("H123", at))
	assert.Equal(t, "callbacks/2024/06/15/unmatched-1718483400000000005.json", callbackObjectName("", at))
	assert.Equal(t, "callbacks/2024/06/15/a%2Fb-1718483400000000005.json", callbackObjectName("a/b", at))
}

func TestNewMinioCallbackArchive_InvalidEndpoint(t *testing.T) {
	_, err := NewMinioCallbackArchive("http://bad endpoint", "k", "s", false, "callbacks")
	assert.Error(t, err)
}
