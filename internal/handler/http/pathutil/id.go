package pathutil

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidID is returned when a path does not end in a positive
// integer ID.
var ErrInvalidID = errors.New("invalid id")

// ExtractID parses the integer ID that follows prefix in path, e.g.
// ExtractID("/articles/123", "/articles/") returns 123. IDs must be
// positive; anything else is ErrInvalidID.
func ExtractID(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
