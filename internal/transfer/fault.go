package transfer

import "fmt"

// Fault reports stops that cannot be compiled. Stops that passed schema
// validation never produce one, so a Fault is a programming error.
type Fault struct {
	Reason string

	// Index is the offending stop, or -1 when the fault concerns the
	// whole list.
	Index     int
	Intensity float64
	Previous  float64

	// Set is the offending stop set when blending; 0 is the primary stops.
	Set int
}

// Error implements the error interface.
func (f *Fault) Error() string {
	where := ""
	if f.Set > 0 {
		where = fmt.Sprintf(" in layer %d", f.Set-1)
	}
	if f.Index <= 0 {
		return "transfer function fault: " + f.Reason + where
	}
	return fmt.Sprintf("transfer function fault: %s at stop %d%s (%v after %v)",
		f.Reason, f.Index, where, f.Intensity, f.Previous)
}
