package protocol

// EncodeReset encodes a Reset frame payload: the committed markup of the
// mount element's children, and the sequence the next Mutations frame
// will carry.
func EncodeReset(seq uint64, html string) []byte {
	e := NewEncoder()
	e.WriteUvarint(seq)
	e.WriteString(html)
	return e.Bytes()
}

// DecodeReset decodes a Reset frame payload.
func DecodeReset(data []byte) (uint64, string, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return 0, "", malformed(err, "reset seq")
	}
	html, err := d.ReadString()
	if err != nil {
		return 0, "", malformed(err, "reset html")
	}
	return seq, html, nil
}
