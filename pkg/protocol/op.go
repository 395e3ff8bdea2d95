package protocol

import (
	"fmt"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// OpType is the type of container operation.
type OpType uint8

const (
	OpMount   OpType = 0x01 // Insert a toast container
	OpAnimate OpType = 0x02 // Transition a container between keyframes
	OpDetach  OpType = 0x03 // Remove a container
)

// String returns the string representation of the op type.
func (ot OpType) String() string {
	switch ot {
	case OpMount:
		return "Mount"
	case OpAnimate:
		return "Animate"
	case OpDetach:
		return "Detach"
	default:
		return "Unknown"
	}
}

// Op is one container operation. Exactly one of the op structs backs
// each value.
type Op interface {
	// Target returns the container ID the op applies to.
	Target() string

	// OpType returns the wire type tag.
	OpType() OpType

	encode(e *Encoder)
}

// Mount inserts a new toast container. The frontend wraps Content in a
// container element identified by TargetID, anchors it below its
// navigation chrome (or at the safe-area top), stretches it edge to
// edge, pins the height when HasFixedHeight, and forces layout before
// any animation is applied.
type Mount struct {
	TargetID       string
	FixedHeight    float64
	HasFixedHeight bool
	Content        *view.Node
}

// Target implements Op.
func (m *Mount) Target() string { return m.TargetID }

// OpType implements Op.
func (m *Mount) OpType() OpType { return OpMount }

func (m *Mount) encode(e *Encoder) {
	e.WriteString(m.TargetID)
	e.WriteBool(m.HasFixedHeight)
	if m.HasFixedHeight {
		e.WriteMilli(m.FixedHeight)
	}
	EncodeNode(e, m.Content)
}

// Animate transitions a container between two keyframes. Opacities are
// absolute; shifts are fractions of the container's own height, so -1
// places it one full height above its resting position.
type Animate struct {
	TargetID    string
	DurationMs  uint32
	FromOpacity float64
	FromShift   float64
	ToOpacity   float64
	ToShift     float64
}

// Target implements Op.
func (a *Animate) Target() string { return a.TargetID }

// OpType implements Op.
func (a *Animate) OpType() OpType { return OpAnimate }

func (a *Animate) encode(e *Encoder) {
	e.WriteString(a.TargetID)
	e.WriteUvarint(uint64(a.DurationMs))
	e.WriteMilli(a.FromOpacity)
	e.WriteMilli(a.FromShift)
	e.WriteMilli(a.ToOpacity)
	e.WriteMilli(a.ToShift)
}

// Detach removes a container from the page.
type Detach struct {
	TargetID string
}

// Target implements Op.
func (d *Detach) Target() string { return d.TargetID }

// OpType implements Op.
func (d *Detach) OpType() OpType { return OpDetach }

func (d *Detach) encode(e *Encoder) {
	e.WriteString(d.TargetID)
}

// EncodeOps encodes a batch of operations as an ops-frame payload.
func EncodeOps(e *Encoder, ops []Op) {
	e.WriteUvarint(uint64(len(ops)))
	for _, op := range ops {
		e.WriteByte(byte(op.OpType()))
		op.encode(e)
	}
}

// DecodeOps decodes an ops-frame payload.
func DecodeOps(d *Decoder) ([]Op, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxOpsPerFrame {
		return nil, ErrBatchTooLarge
	}

	ops := make([]Op, 0, count)
	for i := uint64(0); i < count; i++ {
		op, err := decodeOp(d)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOp(d *Decoder) (Op, error) {
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}

	switch OpType(t) {
	case OpMount:
		m := &Mount{}
		if m.TargetID, err = d.ReadString(); err != nil {
			return nil, err
		}
		if m.HasFixedHeight, err = d.ReadBool(); err != nil {
			return nil, err
		}
		if m.HasFixedHeight {
			if m.FixedHeight, err = d.ReadMilli(); err != nil {
				return nil, err
			}
		}
		if m.Content, err = DecodeNode(d); err != nil {
			return nil, err
		}
		return m, nil

	case OpAnimate:
		a := &Animate{}
		if a.TargetID, err = d.ReadString(); err != nil {
			return nil, err
		}
		dur, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if dur > 1<<32-1 {
			return nil, ErrVarintOverflow
		}
		a.DurationMs = uint32(dur)
		if a.FromOpacity, err = d.ReadMilli(); err != nil {
			return nil, err
		}
		if a.FromShift, err = d.ReadMilli(); err != nil {
			return nil, err
		}
		if a.ToOpacity, err = d.ReadMilli(); err != nil {
			return nil, err
		}
		if a.ToShift, err = d.ReadMilli(); err != nil {
			return nil, err
		}
		return a, nil

	case OpDetach:
		det := &Detach{}
		if det.TargetID, err = d.ReadString(); err != nil {
			return nil, err
		}
		return det, nil

	default:
		return nil, fmt.Errorf("protocol: unknown op type 0x%02X", t)
	}
}
