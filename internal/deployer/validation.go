package deployer

import (
	"errors"
	"strings"

	"shipctl/internal/console"
)

// ValidationError lists every argument problem found in one pass
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid arguments: " + strings.Join(e.Problems, "; ")
}

// problems collects messages and turns them into a ValidationError when non-empty
type problems []string

func (p *problems) add(msg string) {
	*p = append(*p, msg)
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p}
}

// report prints every validation problem carried by err
func report(c *console.Console, err error) {
	var v *ValidationError
	if errors.As(err, &v) {
		c.Errors(v.Problems)
	}
}
