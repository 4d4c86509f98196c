package core

import (
	"errors"
	"strings"
	"testing"
)

func TestReadLimited(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		maxSize int64
		want    string
		wantErr bool
	}{
		{name: "no limit", input: "hello,world", maxSize: 0, want: "hello,world"},
		{name: "under limit", input: "abc", maxSize: 10, want: "abc"},
		{name: "exactly at limit", input: "abcde", maxSize: 5, want: "abcde"},
		{name: "over limit", input: "abcdef", maxSize: 5, wantErr: true},
		{name: "empty", input: "", maxSize: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLimited(strings.NewReader(tt.input), tt.maxSize)
			if tt.wantErr {
				if !errors.Is(err, errDatasetTooLarge) {
					t.Fatalf("error = %v, want errDatasetTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
