//go:build !amd64 && !arm64

package dispatch

func cpuLevel() Capability {
	return Baseline
}

// Features lists the instruction-set extensions relevant to kernel selection.
func Features() []string {
	return nil
}
