package protocol

import "errors"

// PatchOp is the type of address patch operation.
type PatchOp uint8

const (
	// PatchURLPush sets the address and appends a history entry.
	PatchURLPush PatchOp = 0x01

	// PatchURLReplace sets the address in place, without a new entry.
	PatchURLReplace PatchOp = 0x02
)

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchURLPush:
		return "URLPush"
	case PatchURLReplace:
		return "URLReplace"
	default:
		return "Unknown"
	}
}

// ErrUnknownPatchOp is returned when decoding meets an op this version
// does not know.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// Patch is a single address update for the client to apply.
type Patch struct {
	Op    PatchOp
	Path  string // path component, without the query
	Query string // raw query string, without the leading '?'
}

// NewURLPushPatch creates a push patch.
func NewURLPushPatch(path, query string) Patch {
	return Patch{Op: PatchURLPush, Path: path, Query: query}
}

// NewURLReplacePatch creates a replace patch.
func NewURLReplacePatch(path, query string) Patch {
	return Patch{Op: PatchURLReplace, Path: path, Query: query}
}

// PatchesFrame is a batch of patches with a sequence number. Patches in
// one frame are applied in order; the sequence number lets the client
// drop frames that arrive out of order after a reconnect.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a patches frame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
	return e.Bytes()
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	switch p.Op {
	case PatchURLPush, PatchURLReplace:
		e.WriteString(p.Path)
		e.WriteString(p.Query)
	}
}

// DecodePatches decodes a patches frame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadPairCount()
	if err != nil {
		return nil, err
	}

	patches := make([]Patch, count)
	for i := 0; i < count; i++ {
		if err := decodePatch(d, &patches[i]); err != nil {
			return nil, err
		}
	}
	return &PatchesFrame{Seq: seq, Patches: patches}, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	opByte, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(opByte)

	switch p.Op {
	case PatchURLPush, PatchURLReplace:
		if p.Path, err = d.ReadString(); err != nil {
			return err
		}
		p.Query, err = d.ReadString()
		return err
	default:
		return ErrUnknownPatchOp
	}
}
