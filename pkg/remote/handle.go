package remote

// handle is a mounted container's wire ID. IDs are allocated
// sequentially per session (b1, b2, ...) and never reused, so a late
// event for a detached container can only miss, not hit a newer one.
type handle string

// Target returns the container ID as it appears on the wire.
func (h handle) Target() string { return string(h) }
