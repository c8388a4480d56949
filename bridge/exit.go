package bridge

import (
	"fmt"
	"strings"
)

// ExitCondition decides when the render loop stops on its own.
type ExitCondition int

const (
	// ExitOnAllClosed stops once no windows remain.
	ExitOnAllClosed ExitCondition = iota
	// ExitOnPrimaryClosed stops once the primary window has been closed.
	ExitOnPrimaryClosed
	// DontExit keeps running until the context is cancelled.
	DontExit
)

func (c ExitCondition) String() string {
	switch c {
	case ExitOnAllClosed:
		return "all_closed"
	case ExitOnPrimaryClosed:
		return "primary_closed"
	case DontExit:
		return "none"
	default:
		return fmt.Sprintf("ExitCondition(%d)", int(c))
	}
}

func (c ExitCondition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ExitCondition) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "all_closed":
		*c = ExitOnAllClosed
	case "primary_closed":
		*c = ExitOnPrimaryClosed
	case "none", "never":
		*c = DontExit
	default:
		return fmt.Errorf("unknown exit condition %q", string(text))
	}
	return nil
}
