package wire

// isTag reports whether b is one of the thirteen recognized OSC
// argument type tags.
func isTag(b byte) bool {
	switch b {
	case 'i', 'f', 's', 'b', 'h', 'd', 't', 'T', 'F', 'N', 'I', 'S', 'm':
		return true
	default:
		return false
	}
}

// ValidatePath reports whether path is a well-formed OSC address: it
// must begin with '/', and every byte after that must be printable and
// not a space or '#'.
func ValidatePath(path []byte) bool {
	if len(path) == 0 || path[0] != '/' {
		return false
	}
	for _, b := range path[1:] {
		if b < 0x20 || b > 0x7e || b == ' ' || b == '#' {
			return false
		}
	}
	return true
}

// ValidateFormat reports whether format is a well-formed OSC format
// string: it must begin with ',', and every subsequent byte must be a
// recognized argument type tag.
func ValidateFormat(format []byte) bool {
	if len(format) == 0 || format[0] != ',' {
		return false
	}
	for _, b := range format[1:] {
		if !isTag(b) {
			return false
		}
	}
	return true
}
