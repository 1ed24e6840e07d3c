package abbrev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactPrefixFilename(t *testing.T) {
	m := New()
	result := m.MatchPath("main", "src/main.rs")
	require.NotNil(t, result)
	assert.Equal(t, ExactPrefix, result.Strategy)
	assert.GreaterOrEqual(t, result.Score, float32(0.98))
}

func TestExactStemMatchScoresPerfect(t *testing.T) {
	m := New()
	result := m.MatchPath("main", "src/main.go")
	require.NotNil(t, result)
	assert.InDelta(t, 1.00, result.Score, 0.001)
}

func TestExactPrefixComponent(t *testing.T) {
	m := New()
	result := m.MatchPath("src", "src/main.rs")
	require.NotNil(t, result)
	assert.Equal(t, ExactPrefix, result.Strategy)
}

func TestComponentFirstLetter(t *testing.T) {
	m := New()
	result := m.MatchPath("vcs", "vicaya-core/src/main.rs")
	require.NotNil(t, result)
	assert.Equal(t, ComponentFirst, result.Strategy)
	assert.GreaterOrEqual(t, result.Score, float32(0.90))
}

func TestComponentFirstVCM(t *testing.T) {
	m := New()
	result := m.MatchPath("vcm", "vicaya-core/src/main.rs")
	require.NotNil(t, result)
	assert.Equal(t, ComponentFirst, result.Strategy)
}

func TestCamelCaseMatching(t *testing.T) {
	m := New()
	result := m.MatchPath("ct", "Cargo.toml")
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.Score, float32(0.85))
}

func TestSequentialMatching(t *testing.T) {
	m := New()
	result := m.MatchPath("main", "admin/main.rs")
	require.NotNil(t, result)
	assert.GreaterOrEqual(t, result.Score, float32(0.70))
}

func TestNoMatch(t *testing.T) {
	m := New()
	result := m.MatchPath("xyz", "vicaya-core/src/main.rs")
	assert.Nil(t, result)
}

func TestEmptyQuery(t *testing.T) {
	m := New()
	result := m.MatchPath("", "any/path.rs")
	assert.Nil(t, result)
}

func TestCaseInsensitiveDefault(t *testing.T) {
	m := New()
	result := m.MatchPath("MAIN", "src/main.rs")
	assert.NotNil(t, result)
}

func TestSingleCharQuery(t *testing.T) {
	m := New()
	result := m.MatchPath("m", "src/main.rs")
	assert.NotNil(t, result)
}

func TestRealWorldVicayaPaths(t *testing.T) {
	m := New()

	r := m.MatchPath("vcs", "vicaya-core/src/lib.rs")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))

	r = m.MatchPath("vcm", "vicaya-core/src/main.rs")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))

	r = m.MatchPath("vsm", "vicaya-scanner/src/main.rs")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))
}

func TestRealWorldCargoToml(t *testing.T) {
	m := New()

	r := m.MatchPath("CT", "Cargo.toml")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.85))

	r = m.MatchPath("cargo", "Cargo.toml")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.95))
}

func TestRealWorldConfigFiles(t *testing.T) {
	m := New()
	r := m.MatchPath("abc", "admin/backup/config.toml")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))
}

func TestNumbersInPath(t *testing.T) {
	m := New()
	r := m.MatchPath("test", "test123.txt")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))
}

func TestUnicodePaths(t *testing.T) {
	m := New()
	r := m.MatchPath("test", "日本語/test.txt")
	assert.NotNil(t, r)
}

func TestSpecialCharsInQuery(t *testing.T) {
	m := New()
	r := m.MatchPath("c.t", "config.toml")
	assert.NotNil(t, r)
}

func TestVeryLongPath(t *testing.T) {
	m := New()
	long := "very/deep/nested/directory/structure/with/many/components/file.txt"
	r := m.MatchPath("vdn", long)
	assert.NotNil(t, r)
}

func TestScoreOrderingExactBeatsSequential(t *testing.T) {
	m := New()
	exact := m.MatchPath("main", "src/main.rs")
	require.NotNil(t, exact)
	sequential := m.MatchPath("main", "admin/src/file.rs")

	seqScore := float32(0)
	if sequential != nil {
		seqScore = sequential.Score
	}
	assert.Greater(t, exact.Score, seqScore)
}

func TestComponentFirstBeatsSequential(t *testing.T) {
	m := New()
	compFirst := m.MatchPath("abc", "alpha/beta/charlie/file.txt")
	require.NotNil(t, compFirst)
	assert.GreaterOrEqual(t, compFirst.Score, float32(0.90))

	sequential := m.MatchPath("abc", "alphabet/file.txt")
	if sequential != nil {
		assert.Greater(t, compFirst.Score, sequential.Score)
	}
}

func TestExtensionMatching(t *testing.T) {
	m := New()
	r := m.MatchPath("mr", "main.rs")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))
}

func TestCaseSensitiveMatcher(t *testing.T) {
	m := NewCaseSensitive()

	r := m.MatchPath("MAIN", "src/main.rs")
	assert.True(t, r == nil || r.Score < 0.90)

	r = m.MatchPath("main", "src/main.rs")
	assert.NotNil(t, r)
}

func TestMatchedIndicesValidity(t *testing.T) {
	m := New()
	r := m.MatchPath("vcs", "vicaya-core/src/main.rs")
	require.NotNil(t, r)
	assert.NotEmpty(t, r.MatchedIndices)
	assert.LessOrEqual(t, len(r.MatchedIndices), len("vicaya-core/src/main.rs"))
}

func TestQueryLongerThanPath(t *testing.T) {
	m := New()
	r := m.MatchPath("verylongquerythatdoesntfit", "short.txt")
	assert.Nil(t, r)
}

func TestAllSeparators(t *testing.T) {
	m := New()
	r := m.MatchPath("abc", "alpha-beta_charlie.txt")
	require.NotNil(t, r)
	assert.GreaterOrEqual(t, r.Score, float32(0.90))
}

func TestRepeatedCharacters(t *testing.T) {
	m := New()
	r := m.MatchPath("aaa", "alpha/alpha/alpha/file.txt")
	assert.NotNil(t, r)
}

func TestMixedCaseQuery(t *testing.T) {
	m := New()
	r := m.MatchPath("MaIn", "src/main.rs")
	assert.NotNil(t, r)
}

func TestTokenizePath(t *testing.T) {
	tokens := tokenizePath("vicaya-core/src/main.rs")
	assert.Equal(t, []string{"vicaya", "core", "src", "main", "rs"}, tokens)
}

func TestTokenizeUnderscores(t *testing.T) {
	tokens := tokenizePath("test_file_name.txt")
	assert.Equal(t, []string{"test", "file", "name", "txt"}, tokens)
}
