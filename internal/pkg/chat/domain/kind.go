package chat

import "fmt"

// Kind is the closed set of conversation variants. The legacy API encoded it
// as 1/2 or as the strings "friend"/"group"; ParseKind accepts all spellings
// and the rest of the code only ever sees the variant.
type Kind int16

const (
	KindDirect Kind = 1
	KindGroup  Kind = 2
)

// ParseKind normalizes a wire-level kind value into a Kind.
func ParseKind(v string) (Kind, error) {
	switch v {
	case "1", "direct", "friend":
		return KindDirect, nil
	case "2", "group":
		return KindGroup, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, v)
	}
}

func (k Kind) Valid() bool {
	return k == KindDirect || k == KindGroup
}

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}
