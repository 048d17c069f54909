package checksum

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		wantAlgorithm Algorithm
		wantHash      string
		wantErr       bool
	}{
		{
			name:          "sha256",
			value:         "sha256:abc123",
			wantAlgorithm: AlgorithmSHA256,
			wantHash:      "abc123",
			wantErr:       false,
		},
		{
			name:          "sha512",
			value:         "sha512:def456",
			wantAlgorithm: AlgorithmSHA512,
			wantHash:      "def456",
			wantErr:       false,
		},
		{
			name:          "sha1",
			value:         "sha1:ghi789",
			wantAlgorithm: AlgorithmSHA1,
			wantHash:      "ghi789",
			wantErr:       false,
		},
		{
			name:          "md5",
			value:         "md5:jkl012",
			wantAlgorithm: AlgorithmMD5,
			wantHash:      "jkl012",
			wantErr:       false,
		},
		{
			name:    "missing algorithm",
			value:   "abc123",
			wantErr: true,
		},
		{
			name:    "unsupported algorithm",
			value:   "crc32:abc123",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg, hash, err := Parse(tt.value)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAlgorithm, alg)
			assert.Equal(t, tt.wantHash, hash)
		})
	}
}

func TestCalculate(t *testing.T) {
	content := []byte("hello world")
	expectedSHA256 := fmt.Sprintf("%x", sha256.Sum256(content))
	expectedSHA512 := fmt.Sprintf("%x", sha512.Sum512(content))
	expectedSHA1 := fmt.Sprintf("%x", sha1.Sum(content))
	expectedMD5 := fmt.Sprintf("%x", md5.Sum(content))

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "testfile")
	err := os.WriteFile(filePath, content, 0644)
	require.NoError(t, err)

	tests := []struct {
		name      string
		algorithm Algorithm
		want      string
		wantErr   bool
	}{
		{name: "sha256", algorithm: AlgorithmSHA256, want: expectedSHA256},
		{name: "sha512", algorithm: AlgorithmSHA512, want: expectedSHA512},
		{name: "sha1", algorithm: AlgorithmSHA1, want: expectedSHA1},
		{name: "md5", algorithm: AlgorithmMD5, want: expectedMD5},
		{name: "unsupported algorithm", algorithm: "crc32", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(filePath, tt.algorithm)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateFromReader(t *testing.T) {
	content := []byte("hello world")
	expectedSHA256 := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := CalculateFromReader(bytes.NewReader(content), AlgorithmSHA256)
	require.NoError(t, err)
	assert.Equal(t, expectedSHA256, hash)
}

func TestVerify(t *testing.T) {
	content := []byte("hello world")
	expectedSHA256 := fmt.Sprintf("%x", sha256.Sum256(content))

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "testfile")
	err := os.WriteFile(filePath, content, 0644)
	require.NoError(t, err)

	tests := []struct {
		name      string
		hash      string
		algorithm Algorithm
		wantErr   bool
	}{
		{
			name:      "valid checksum",
			hash:      expectedSHA256,
			algorithm: AlgorithmSHA256,
			wantErr:   false,
		},
		{
			name:      "invalid checksum",
			hash:      "0000000000000000000000000000000000000000000000000000000000000000",
			algorithm: AlgorithmSHA256,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(filePath, tt.algorithm, tt.hash)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestDetectAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want Algorithm
	}{
		{
			name: "md5 length",
			hash: "5eb63bbbe01eeed093cb22bb8f5acdc3",
			want: AlgorithmMD5,
		},
		{
			name: "sha1 length",
			hash: "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed",
			want: AlgorithmSHA1,
		},
		{
			name: "sha256 length",
			hash: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			want: AlgorithmSHA256,
		},
		{
			name: "sha512 length",
			hash: "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
			want: AlgorithmSHA512,
		},
		{
			name: "unknown length",
			hash: "abc123",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAlgorithm(tt.hash)
			assert.Equal(t, tt.want, got)
		})
	}
}
