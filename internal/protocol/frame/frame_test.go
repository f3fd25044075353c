package frame

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplitCountsWholeRecords(t *testing.T) {
	cases := []struct {
		length, stride    int
		records, trailing int
	}{
		{0, 12, 0, 0},
		{12, 12, 1, 0},
		{25, 12, 2, 1},
		{7, 8, 0, 7},
		{5, 0, 0, 5},
	}
	for _, tc := range cases {
		records, trailing := Split(tc.length, tc.stride)
		if records != tc.records || trailing != tc.trailing {
			t.Fatalf("split(%d,%d): got=(%d,%d) want=(%d,%d)",
				tc.length, tc.stride, records, trailing, tc.records, tc.trailing)
		}
	}
}

func TestCheckReportsTrailingBytes(t *testing.T) {
	if err := Check(24, 12); err != nil {
		t.Fatalf("expected whole strides to pass, got %v", err)
	}
	err := Check(26, 12)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %T", err)
	}
	if malformed.Length != 26 || malformed.Stride != 12 {
		t.Fatalf("unexpected error fields: %+v", malformed)
	}
	if !errors.Is(Check(8, 0), ErrBadStride) {
		t.Fatalf("expected ErrBadStride for zero stride")
	}
}

func TestReadBodyEnforcesLimit(t *testing.T) {
	body, err := ReadBody(bytes.NewReader(make([]byte, 16)), Limits{MaxBodyBytes: 16})
	if err != nil {
		t.Fatalf("read at limit: %v", err)
	}
	if len(body) != 16 {
		t.Fatalf("unexpected body length: %d", len(body))
	}

	_, err = ReadBody(bytes.NewReader(make([]byte, 17)), Limits{MaxBodyBytes: 16})
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}

	body, err = ReadBody(bytes.NewReader(make([]byte, 64)), Limits{})
	if err != nil || len(body) != 64 {
		t.Fatalf("unlimited read: len=%d err=%v", len(body), err)
	}
}

func TestReadPrefixTruncates(t *testing.T) {
	body, err := ReadPrefix(bytes.NewReader(make([]byte, 40)), Limits{MaxBodyBytes: 16})
	if err != nil || len(body) != 16 {
		t.Fatalf("expected 16-byte prefix, got %d err=%v", len(body), err)
	}
	body, err = ReadPrefix(bytes.NewReader(make([]byte, 40)), Limits{})
	if err != nil || len(body) != 40 {
		t.Fatalf("expected full body without a limit, got %d err=%v", len(body), err)
	}
}
