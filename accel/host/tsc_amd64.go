//go:build amd64

package host

import "github.com/dterei/gotsc"

// Copyright © 2022 Matthew R Bonnette. Licensed under the Apache-2.0 license.

func cyclesStart() uint64 { return gotsc.BenchStart() }

func cyclesEnd() uint64 { return gotsc.BenchEnd() }
