package controlflow

import (
	"errors"
	"fmt"
	"math"

	"github.com/ionlang/ionbc/bytecode"
)

// ErrUsage is returned when a builder method is called out of order or
// after Build. A builder that reported ErrUsage must be discarded; partial
// reuse is not supported.
var ErrUsage = errors.New("control-flow builder misuse")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// checkRegister validates that a condition register fits the unsigned
// 32-bit wire field. Violations wrap bytecode.ErrEncoding.
func checkRegister(reg int) error {
	if reg < 0 || reg > math.MaxUint32 {
		return fmt.Errorf("%w: condition register %d does not fit u32", bytecode.ErrEncoding, reg)
	}
	return nil
}

// checkOffset validates that a resolved jump offset fits the signed 32-bit
// wire field. Violations wrap bytecode.ErrEncoding.
func checkOffset(offset int) error {
	if offset < math.MinInt32 || offset > math.MaxInt32 {
		return fmt.Errorf("%w: jump offset %d does not fit i32", bytecode.ErrEncoding, offset)
	}
	return nil
}
