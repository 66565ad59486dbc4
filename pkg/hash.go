package fdb

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// HashAlgorithm represents a hash algorithm configuration
type HashAlgorithm struct {
	Name    string
	Size    int
	NewFunc func() hash.Hash
}

// GetHashAlgorithm returns the hash algorithm configuration for the given name
func GetHashAlgorithm(name string) (*HashAlgorithm, error) {
	switch strings.ToLower(name) {
	case "md5":
		return &HashAlgorithm{
			Name:    "md5",
			Size:    HashSizeMD5,
			NewFunc: md5.New,
		}, nil
	case "sha1":
		return &HashAlgorithm{
			Name:    "sha1",
			Size:    HashSizeSHA1,
			NewFunc: sha1.New,
		}, nil
	case "sha256":
		return &HashAlgorithm{
			Name:    "sha256",
			Size:    HashSizeSHA256,
			NewFunc: sha256.New,
		}, nil
	case "sha512":
		return &HashAlgorithm{
			Name:    "sha512",
			Size:    HashSizeSHA512,
			NewFunc: sha512.New,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", name)
	}
}

// defaultAlgorithm returns MD5, or algorithm when it is set
func defaultAlgorithm(algorithm *HashAlgorithm) *HashAlgorithm {
	if algorithm != nil {
		return algorithm
	}
	alg, _ := GetHashAlgorithm(DefaultHashAlgorithm)
	return alg
}

// HashFile streams a file from fsys through the algorithm in HashBufferSize
// chunks and returns the raw digest. Cancellation is checked between reads.
func HashFile(ctx context.Context, fsys billy.Filesystem, filePath string, algorithm *HashAlgorithm) ([]byte, error) {
	algorithm = defaultAlgorithm(algorithm)

	file, err := fsys.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := algorithm.NewFunc()
	buffer := make([]byte, HashBufferSize)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("hash of %s interrupted: %w", filePath, ctx.Err())
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum(nil), nil
}

// HashBytes hashes data in memory with the given algorithm (MD5 when nil)
func HashBytes(data []byte, algorithm *HashAlgorithm) []byte {
	hasher := defaultAlgorithm(algorithm).NewFunc()
	hasher.Write(data)
	return hasher.Sum(nil)
}
