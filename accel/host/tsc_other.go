//go:build !amd64

package host

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

/* No portable cycle counter; events report 0 cycles. */

func cyclesStart() uint64 { return 0 }

func cyclesEnd() uint64 { return 0 }
