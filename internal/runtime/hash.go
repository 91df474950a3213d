package runtime

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"

	"github.com/zclconf/go-cty/cty"
)

// Hasher lets capsule payloads contribute a stable hash to the memoization
// key. Capsule types whose payloads implement Hasher are hashed via
// GraphHash; other payloads fall back to their Go-syntax representation.
type Hasher interface {
	GraphHash() uint64
}

// HashValue computes a stable 64-bit hash of a cty value, used as the
// memoization key for a node's effective input. Unknown and null values
// hash by type only.
func HashValue(v cty.Value) uint64 {
	h := fnv.New64a()
	hashValue(h, v)
	return h.Sum64()
}

func hashUint64(h hash.Hash64, u uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	h.Write(buf[:])
}

func hashValue(h hash.Hash64, v cty.Value) {
	if v == cty.NilVal {
		h.Write([]byte("nil"))
		return
	}
	ty := v.Type()
	h.Write([]byte(ty.FriendlyName()))
	if v.IsNull() {
		h.Write([]byte("null"))
		return
	}
	if !v.IsKnown() {
		h.Write([]byte("unknown"))
		return
	}

	switch {
	case ty.Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		hashUint64(h, math.Float64bits(f))
	case ty.Equals(cty.String):
		h.Write([]byte(v.AsString()))
	case ty.Equals(cty.Bool):
		if v.True() {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case ty.IsCapsuleType():
		hashCapsule(h, v)
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			hashValue(h, ev)
		}
	case ty.IsMapType() || ty.IsObjectType():
		it := v.ElementIterator()
		for it.Next() {
			kv, ev := it.Element()
			h.Write([]byte(kv.AsString()))
			hashValue(h, ev)
		}
	default:
		fmt.Fprintf(h, "%#v", v)
	}
}

func hashCapsule(h hash.Hash64, v cty.Value) {
	payload := v.EncapsulatedValue()
	if ec, ok := payload.(*EvalContext); ok {
		hashContext(h, ec)
		return
	}
	if hp, ok := payload.(Hasher); ok {
		hashUint64(h, hp.GraphHash())
		return
	}
	fmt.Fprintf(h, "%#v", payload)
}

// hashContext hashes the memo-relevant parts of an evaluation context.
// Time is deliberately left out; see EvalContext.
func hashContext(h hash.Hash64, ec *EvalContext) {
	if ec == nil {
		h.Write([]byte("no-context"))
		return
	}
	if ec.Footprint != nil {
		hashUint64(h, math.Float64bits(ec.Footprint.X))
		hashUint64(h, math.Float64bits(ec.Footprint.Y))
		hashUint64(h, math.Float64bits(ec.Footprint.Width))
		hashUint64(h, math.Float64bits(ec.Footprint.Height))
	}
	if ec.Index != nil {
		hashUint64(h, uint64(*ec.Index))
	}
	for _, v := range ec.Varargs {
		hashValue(h, v)
	}
}
