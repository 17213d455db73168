package codectest

// EarRecord is the personalized prefix of an ear item.
type EarRecord struct {
	Class uint8
	Level uint8
	Name  string
}

// ItemRecord describes an item prefix to encode. Body is appended after the
// aligned prefix as opaque item data.
type ItemRecord struct {
	Flags    uint32
	Version  uint8
	Location uint8
	BodyLoc  uint8
	X, Y     uint8
	Store    uint8
	Code     string
	Sockets  uint8
	Ear      *EarRecord
	Body     []byte
}

// Bytes encodes the record starting with the "JM" signature.
func (r ItemRecord) Bytes() []byte {
	bw := NewBitWriter().
		WriteBits(uint64(r.Flags), 32).
		WriteBits(uint64(r.Version), 8).
		WriteBits(0, 2).
		WriteBits(uint64(r.Location), 3).
		WriteBits(uint64(r.BodyLoc), 4).
		WriteBits(uint64(r.X), 4).
		WriteBits(uint64(r.Y), 4).
		WriteBits(uint64(r.Store), 3)

	if r.Ear != nil {
		bw.WriteBits(uint64(r.Ear.Class), 3).WriteBits(uint64(r.Ear.Level), 7)
		for _, c := range []byte(r.Ear.Name) {
			bw.WriteBits(uint64(c), 7)
		}
		bw.WriteBits(0, 7)
	} else {
		code := []byte(r.Code + "    ")[:4]
		for _, c := range code {
			bw.WriteBits(uint64(c), 8)
		}
		bw.WriteBits(uint64(r.Sockets), 3)
	}

	return NewWriter().
		WriteBytes([]byte{'J', 'M'}).
		WriteBytes(bw.Bytes()).
		WriteBytes(r.Body).
		Bytes()
}
