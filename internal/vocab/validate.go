package vocab

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks a [Term]:
//   - Term must not be blank.
//   - Kind must be empty or a recognised [Kind].
//   - Aliases must not be blank and must differ from Term.
func Validate(term Term) error {
	var errs []error

	if strings.TrimSpace(term.Term) == "" {
		errs = append(errs, errors.New("term must not be empty"))
	}
	if !term.Kind.IsValid() {
		errs = append(errs, fmt.Errorf("kind %q is not a recognised kind", term.Kind))
	}
	for i, a := range term.Aliases {
		switch {
		case strings.TrimSpace(a) == "":
			errs = append(errs, fmt.Errorf("aliases[%d]: must not be empty", i))
		case strings.EqualFold(a, term.Term):
			errs = append(errs, fmt.Errorf("aliases[%d]: %q repeats the term", i, a))
		}
	}
	return errors.Join(errs...)
}
