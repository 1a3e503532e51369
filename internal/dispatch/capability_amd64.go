//go:build amd64

package dispatch

import "golang.org/x/sys/cpu"

func cpuLevel() Capability {
	switch {
	case cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW && cpu.X86.HasAVX512VL:
		return Vec512
	case cpu.X86.HasAVX2 && cpu.X86.HasFMA:
		return Vec256
	case cpu.X86.HasSSE42:
		return Vec128
	default:
		return Baseline
	}
}

// Features lists the instruction-set extensions relevant to kernel selection.
func Features() []string {
	var out []string
	for _, f := range []struct {
		name string
		has  bool
	}{
		{"sse4.2", cpu.X86.HasSSE42},
		{"avx", cpu.X86.HasAVX},
		{"avx2", cpu.X86.HasAVX2},
		{"fma", cpu.X86.HasFMA},
		{"avx512f", cpu.X86.HasAVX512F},
		{"avx512bw", cpu.X86.HasAVX512BW},
		{"avx512vl", cpu.X86.HasAVX512VL},
	} {
		if f.has {
			out = append(out, f.name)
		}
	}
	return out
}
