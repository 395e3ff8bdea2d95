package protocol

import (
	"fmt"
	"sort"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// nilNodeMarker is the kind byte marking a nil tree on the wire.
const nilNodeMarker = 0xFF

// EncodeNode encodes a content tree. Attributes are written sorted by
// key so identical trees encode to identical bytes.
func EncodeNode(e *Encoder, n *view.Node) {
	if n == nil {
		e.WriteByte(nilNodeMarker)
		return
	}

	e.WriteByte(byte(n.Kind))

	switch n.Kind {
	case view.KindElement:
		e.WriteString(n.Tag)

		e.WriteUvarint(uint64(len(n.Attrs)))
		keys := make([]string, 0, len(n.Attrs))
		for k := range n.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			e.WriteString(k)
			e.WriteString(n.Attrs[k])
		}

		e.WriteUvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			EncodeNode(e, c)
		}

	case view.KindText:
		e.WriteString(n.Text)

	case view.KindFragment:
		e.WriteUvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			EncodeNode(e, c)
		}
	}
}

// DecodeNode decodes a content tree, enforcing MaxTreeNodes across the
// whole tree.
func DecodeNode(d *Decoder) (*view.Node, error) {
	budget := MaxTreeNodes
	return decodeNode(d, &budget)
}

func decodeNode(d *Decoder, budget *int) (*view.Node, error) {
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == nilNodeMarker {
		return nil, nil
	}

	*budget--
	if *budget < 0 {
		return nil, ErrTreeTooLarge
	}

	switch view.Kind(kind) {
	case view.KindElement:
		n := &view.Node{Kind: view.KindElement}
		if n.Tag, err = d.ReadString(); err != nil {
			return nil, err
		}

		attrCount, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if attrCount > uint64(MaxTreeNodes) {
			return nil, ErrTreeTooLarge
		}
		// Always non-nil, matching what the view builders produce.
		n.Attrs = make(view.Attrs, attrCount)
		for i := uint64(0); i < attrCount; i++ {
			k, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			v, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			n.Attrs[k] = v
		}

		if n.Children, err = decodeChildren(d, budget); err != nil {
			return nil, err
		}
		return n, nil

	case view.KindText:
		n := &view.Node{Kind: view.KindText}
		if n.Text, err = d.ReadString(); err != nil {
			return nil, err
		}
		return n, nil

	case view.KindFragment:
		n := &view.Node{Kind: view.KindFragment, Attrs: make(view.Attrs)}
		if n.Children, err = decodeChildren(d, budget); err != nil {
			return nil, err
		}
		return n, nil

	default:
		return nil, fmt.Errorf("protocol: unknown node kind 0x%02X", kind)
	}
}

func decodeChildren(d *Decoder, budget *int) ([]*view.Node, error) {
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > uint64(MaxTreeNodes) {
		return nil, ErrTreeTooLarge
	}

	children := make([]*view.Node, 0, count)
	for i := uint64(0); i < count; i++ {
		c, err := decodeNode(d, budget)
		if err != nil {
			return nil, err
		}
		if c != nil {
			children = append(children, c)
		}
	}
	return children, nil
}
