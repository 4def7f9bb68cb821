package chunk

// ObjString is an immutable, interned string. Any two live ObjStrings with
// equal contents are guaranteed to be the same object (see lang/gc, which
// owns the intern table); Value.Equal therefore compares strings by pointer
// identity.
type ObjString struct {
	Header
	Chars string
	Hash  uint32
}

func (s *ObjString) Kind() ObjKind      { return KindStringObj }
func (s *ObjString) ObjHeader() *Header { return &s.Header }
func (s *ObjString) String() string     { return s.Chars }

// HashString computes the FNV-1a 32-bit hash of s, the same algorithm
// original_source/object.c uses, so that two equal-content strings always
// hash identically regardless of where they were constructed.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
