package atom

// Tree is a small, allocating decoded view of an atom, used by tests and
// debugging tools that want to inspect a whole packet at once rather
// than walk it with the zero-allocation reader functions. Nothing in the
// codec's hot path constructs a Tree.
type Tree struct {
	Type  uint32
	Body  []byte // raw body for primitive atoms
	Items []Tree // Tuple children
	OType uint32 // Object otype, if Type is an Object
	Props []Prop // Object properties, if Type is an Object
}

// Prop is one decoded Object property.
type Prop struct {
	Key   uint32
	Value Tree
}

// Decode parses data as a single atom into a Tree. tupleType and
// objectType identify which type ids are Tuple and Object containers;
// every other type is treated as a primitive leaf holding its raw body.
func Decode(data []byte, tupleType, objectType uint32) (Tree, error) {
	hdr, body, _, err := ReadAtom(data)
	if err != nil {
		return Tree{}, err
	}
	return decodeBody(hdr, body, tupleType, objectType)
}

func decodeBody(hdr Header, body []byte, tupleType, objectType uint32) (Tree, error) {
	switch hdr.Type {
	case tupleType:
		items, err := decodeTuple(body, tupleType, objectType)
		if err != nil {
			return Tree{}, err
		}
		return Tree{Type: hdr.Type, Items: items}, nil
	case objectType:
		otype, props, err := decodeObject(body, tupleType, objectType)
		if err != nil {
			return Tree{}, err
		}
		return Tree{Type: hdr.Type, OType: otype, Props: props}, nil
	default:
		return Tree{Type: hdr.Type, Body: body}, nil
	}
}

func decodeTuple(body []byte, tupleType, objectType uint32) ([]Tree, error) {
	var items []Tree
	for len(body) > 0 {
		hdr, item, rest, err := ReadAtom(body)
		if err != nil {
			return nil, err
		}
		tree, err := decodeBody(hdr, item, tupleType, objectType)
		if err != nil {
			return nil, err
		}
		items = append(items, tree)
		body = rest
	}
	return items, nil
}

func decodeObject(body []byte, tupleType, objectType uint32) (uint32, []Prop, error) {
	otype, props, err := Object(body)
	if err != nil {
		return 0, nil, err
	}
	var out []Prop
	for len(props) > 0 {
		key, hdr, value, rest, err := ReadProperty(props)
		if err != nil {
			return 0, nil, err
		}
		tree, err := decodeBody(hdr, value, tupleType, objectType)
		if err != nil {
			return 0, nil, err
		}
		out = append(out, Prop{Key: key, Value: tree})
		props = rest
	}
	return otype, out, nil
}
