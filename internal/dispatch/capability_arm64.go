//go:build arm64

package dispatch

import "golang.org/x/sys/cpu"

func cpuLevel() Capability {
	if cpu.ARM64.HasASIMD {
		return Vec128
	}
	return Baseline
}

// Features lists the instruction-set extensions relevant to kernel selection.
func Features() []string {
	var out []string
	if cpu.ARM64.HasASIMD {
		out = append(out, "asimd")
	}
	if cpu.ARM64.HasFPHP {
		out = append(out, "fphp")
	}
	if cpu.ARM64.HasSVE {
		out = append(out, "sve")
	}
	return out
}
