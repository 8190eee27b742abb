package schema

import (
	"fmt"
	"strings"

	"github.com/blockleaf/avro/avroerr"
)

func invalidNameFirstChar(r rune) bool {
	return (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') && r != '_'
}

func invalidNameOtherChar(r rune) bool {
	return invalidNameFirstChar(r) && (r < '0' || r > '9')
}

// validateName checks a name or enum symbol against the Avro spec's naming
// rule: starts with [A-Za-z_], followed by [A-Za-z0-9_]*.
func validateName(n string) error {
	if n == "" {
		return fmt.Errorf("%w: name must be non-empty", avroerr.ErrInvalidName)
	}
	if strings.IndexFunc(n[:1], invalidNameFirstChar) >= 0 {
		return fmt.Errorf("%w: %q", avroerr.ErrInvalidName, n)
	}
	if strings.IndexFunc(n[1:], invalidNameOtherChar) >= 0 {
		return fmt.Errorf("%w: %q", avroerr.ErrInvalidName, n)
	}
	return nil
}
