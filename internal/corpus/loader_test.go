package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ssdc/internal/match"
	"github.com/standardbeagle/ssdc/internal/scorer"
	"github.com/standardbeagle/ssdc/internal/sigparse"
	"github.com/standardbeagle/ssdc/internal/signature"
)

func TestLoad_Basic(t *testing.T) {
	text := "ssdeep,1.1--blocksize:hash:hash,filename\n" +
		`3:abcdefgh:ijklmnop,"a.bin"` + "\n" +
		`6:qrstuvwx:yz0123456789AB,"b.bin"` + "\n"

	var alloc signature.IDAllocator
	parser := sigparse.New(&alloc)
	engine := match.New(match.Config{Threshold: 0}, scorer.NewEdlibScorer(), nil)

	result, err := Load(strings.NewReader(text), "known.txt", engine, parser)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Len(t, engine.AllFiles(), 2)
}

func TestLoad_InvalidHeader(t *testing.T) {
	text := "not-a-header\n3:abcdefgh:ijklmnop,\"a.bin\"\n"

	var alloc signature.IDAllocator
	parser := sigparse.New(&alloc)
	engine := match.New(match.Config{}, scorer.NewEdlibScorer(), nil)

	_, err := Load(strings.NewReader(text), "known.txt", engine, parser)
	require.Error(t, err)
}

func TestLoad_ContinuesPastParseErrors(t *testing.T) {
	text := "ssdeep,1.1--blocksize:hash:hash,filename\n" +
		`3:abcdefgh:ijklmnop,"a.bin"` + "\n" +
		"not-a-signature-line-at-all\n" +
		`6:qrstuvwx:yz0123456789AB,"b.bin"` + "\n"

	var alloc signature.IDAllocator
	parser := sigparse.New(&alloc)
	engine := match.New(match.Config{}, scorer.NewEdlibScorer(), nil)

	result, err := Load(strings.NewReader(text), "known.txt", engine, parser)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Len(t, result.ParseErrors, 1)
}
