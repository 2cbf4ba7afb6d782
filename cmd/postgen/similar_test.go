package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two three", preview("one\ntwo   three", 50))
	assert.Equal(t, "abc...", preview("abcdef", 3))
	assert.Equal(t, "नमस्ते...", preview("नमस्ते दुनिया", 6))
}
