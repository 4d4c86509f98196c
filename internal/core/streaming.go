package core

// streaming.go provides the size-capped read used when pulling dataset
// bodies off the wire or the filesystem.

import (
	"errors"
	"fmt"
	"io"
)

// errDatasetTooLarge is the cause recorded when a body exceeds the size cap.
var errDatasetTooLarge = errors.New("dataset too large")

// readLimited reads r to EOF. With maxSize > 0, input longer than maxSize
// fails with an error wrapping errDatasetTooLarge instead of being truncated.
func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}

	// One extra byte distinguishes "exactly maxSize" from "more than maxSize".
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", errDatasetTooLarge, maxSize)
	}
	return data, nil
}
