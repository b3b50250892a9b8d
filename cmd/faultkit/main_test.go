package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var storeCommands = map[string]bool{"delete": true, "mutate": true, "replace": true, "cmp": true, "campaign": true}

func runCLI(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	if len(args) > 0 && storeCommands[args[0]] {
		args = append([]string{args[0], "--log-level", "error"}, args[1:]...)
	}
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func hundredBytes() []byte {
	b := make([]byte, 100)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.bin", hundredBytes())
	out := filepath.Join(dir, "out.bin")

	stdout, err := runCLI(t, "delete", "--loc", "0.5", "--size", "0.2", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "CorruptByDeletion")
	assert.Contains(t, stdout, "(80 bytes")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, got, 80)
}

func TestMutate_Seeded(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.bin", hundredBytes())
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")

	_, err := runCLI(t, "mutate", "--loc", "0.1", "--size", "0.5", "--seed", "9", in, a)
	require.NoError(t, err)
	_, err = runCLI(t, "mutate", "--loc", "0.1", "--size", "0.5", "--seed", "9", in, b)
	require.NoError(t, err)

	stdout, err := runCLI(t, "cmp", a, b)
	require.NoError(t, err)
	assert.Equal(t, "identical\n", stdout)
}

func TestReplace_Overrun(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.bin", hundredBytes())
	out := filepath.Join(dir, "out.bin")

	stdout, err := runCLI(t, "replace", "--start", "95", "--count", "10", "--with", "XY", in, out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "warning: ")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, got, 97)
	assert.Equal(t, "XY", string(got[95:]))
}

func TestCmp_Different(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("one"))
	b := writeFile(t, dir, "b", []byte("two"))

	stdout, err := runCLI(t, "cmp", a, b)
	assert.Equal(t, "different\n", stdout)

	var coder interface{ ExitCode() int }
	require.ErrorAs(t, err, &coder)
	assert.Equal(t, 1, coder.ExitCode())
}

func TestCmp_LocalStoreRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a", []byte("same"))
	writeFile(t, dir, "b", []byte("same"))

	stdout, err := runCLI(t, "cmp", "--store", "file://"+dir, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "identical\n", stdout)
}

func TestHash(t *testing.T) {
	stdout, err := runCLI(t, "hash", "a", "abc")
	require.NoError(t, err)
	assert.Equal(t, "a\t10353082222279438336\nabc\t9436816276434428836\n", stdout)

	stdout, err = runCLI(t, "hash", "--kind", "fast", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc\t136518\n", stdout)

	stdout, err = runCLI(t, "hash", "--kind", "fast", "--buckets", "101", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc\t136518\t67\n", stdout)

	stdout, err = runCLI(t, "hash", "--kind", "point", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, "1,1\t5936442401\n", stdout)

	stdout, err = runCLI(t, "hash", "--kind", "float", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, "-1\t217324\n", stdout)

	stdout, err = runCLI(t, "hash", "--kind", "point", "--", "3", "-7")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3,-7\t")

	_, err = runCLI(t, "hash", "--kind", "crc", "x")
	assert.Error(t, err)
}

func TestLocalCommandsRejectStoreFlags(t *testing.T) {
	for _, args := range [][]string{
		{"hash", "--store", "s3://bucket", "abc"},
		{"prime", "--log-level", "debug", "7"},
		{"rand", "--log-format", "json", "1", "6"},
	} {
		_, err := runCLI(t, args...)
		assert.Error(t, err, args[0])
	}
}

func TestPrime(t *testing.T) {
	stdout, err := runCLI(t, "prime", "9")
	require.NoError(t, err)
	assert.Equal(t, "9: composite(3)\n", stdout)

	stdout, err = runCLI(t, "prime", "101")
	require.NoError(t, err)
	assert.Equal(t, "101: prime\n", stdout)

	stdout, err = runCLI(t, "prime", "--next", "7")
	require.NoError(t, err)
	assert.Equal(t, "11\n", stdout)

	_, err = runCLI(t, "prime", "0")
	assert.Error(t, err)
}

func TestRand(t *testing.T) {
	first, err := runCLI(t, "rand", "--seed", "5", "--count", "3", "1", "6")
	require.NoError(t, err)
	second, err := runCLI(t, "rand", "--seed", "5", "--count", "3", "1", "6")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, strings.Fields(first), 3)

	_, err = runCLI(t, "rand", "6", "1")
	assert.Error(t, err)
}

func TestCampaign(t *testing.T) {
	dir := t.TempDir()
	payload := writeFile(t, dir, "payload.txt", bytes.Repeat([]byte("faultkit "), 100))
	config := writeFile(t, dir, "campaign.yaml", []byte("codec: raw\nmode: delete\ntrials: 5\n"))

	stdout, err := runCLI(t, "campaign", "--config", config, "--payload", payload, "--offsets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "raw/delete: 5 trials, 0 rejected, 5 silent")

	stdout, err = runCLI(t, "campaign", "--config", config, "--payload", payload, "--codec", "gzip", "--trials", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gzip/delete: 3 trials")

	_, err = runCLI(t, "campaign", "--config", config)
	assert.Error(t, err)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "explode")
	assert.Error(t, err)

	var out, errOut bytes.Buffer
	err = run(context.Background(), nil, &out, &errOut)
	var coder interface{ ExitCode() int }
	require.ErrorAs(t, err, &coder)
	assert.Equal(t, 2, coder.ExitCode())
	assert.Contains(t, errOut.String(), "campaign")
}

func TestParseStoreSpec(t *testing.T) {
	tests := []struct {
		raw  string
		want storeSpec
	}{
		{"", storeSpec{scheme: "file"}},
		{"file", storeSpec{scheme: "file"}},
		{"file:///tmp/x", storeSpec{scheme: "file", prefix: "/tmp/x"}},
		{"s3://bucket", storeSpec{scheme: "s3", bucket: "bucket"}},
		{"s3://bucket/fixtures/pdf/", storeSpec{scheme: "s3", bucket: "bucket", prefix: "fixtures/pdf"}},
		{"minio://localhost:9000/bucket", storeSpec{scheme: "minio", endpoint: "localhost:9000", bucket: "bucket"}},
		{"minio://localhost:9000/bucket/a/b", storeSpec{scheme: "minio", endpoint: "localhost:9000", bucket: "bucket", prefix: "a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseStoreSpec(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"s3://", "minio://localhost:9000", "gs://bucket"} {
		_, err := parseStoreSpec(bad)
		assert.Error(t, err, bad)
	}
}
