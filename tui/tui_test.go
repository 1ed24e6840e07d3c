package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vicaya/vicaya"
)

func TestRenderEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, nil)
	assert.Contains(t, buf.String(), "no matches")
}

func TestRenderListsPathsWithScore(t *testing.T) {
	var buf bytes.Buffer
	render(&buf, []vicaya.SearchResult{
		{Path: "/home/user/main.go", Score: 0.987},
	})
	out := buf.String()
	assert.Contains(t, out, "/home/user/main.go")
	assert.Contains(t, out, "0.987")
}

func TestRunExitsOnQuitCommand(t *testing.T) {
	in := strings.NewReader("quit\n")
	var out bytes.Buffer

	err := Run(nil, in, &out, Options{Limit: 10})
	assert.NoError(t, err)
}

func TestRunExitsOnEOF(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer

	err := Run(nil, in, &out, Options{Limit: 10})
	assert.NoError(t, err)
}
