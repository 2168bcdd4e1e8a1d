package schedule

import (
	"fmt"
	"strings"
)

// DistributionMode selects the partitioning policy applied to a
// discovered item sequence.
type DistributionMode int

const (
	Load DistributionMode = iota
	LoadScope
	LoadFile
	LoadGroup
	WorkSteal
	No
)

// All lists every mode in the order error messages enumerate them.
var All = []DistributionMode{Load, LoadScope, LoadFile, LoadGroup, WorkSteal, No}

func (m DistributionMode) String() string {
	switch m {
	case Load:
		return "load"
	case LoadScope:
		return "loadscope"
	case LoadFile:
		return "loadfile"
	case LoadGroup:
		return "loadgroup"
	case WorkSteal:
		return "worksteal"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// ParseDistributionMode parses the --dist flag's value.
func ParseDistributionMode(s string) (DistributionMode, error) {
	switch s {
	case "load":
		return Load, nil
	case "loadscope":
		return LoadScope, nil
	case "loadfile":
		return LoadFile, nil
	case "loadgroup":
		return LoadGroup, nil
	case "worksteal":
		return WorkSteal, nil
	case "no":
		return No, nil
	default:
		names := make([]string, len(All))
		for i, m := range All {
			names[i] = m.String()
		}
		return 0, fmt.Errorf("unsupported distribution mode %q. Supported modes: %s", s, strings.Join(names, ", "))
	}
}
