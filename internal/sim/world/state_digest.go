package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Digest returns the state hash for the current tick.
func (w *World) Digest() string { return w.stateDigest(w.tick.Load()) }

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteI64(h, &tmp, w.cfg.Seed)

	l := w.ledger.Snapshot()
	digestWriteI64(h, &tmp, int64(l.Wood))
	digestWriteI64(h, &tmp, int64(l.Stone))

	st := w.build.State()
	h.Write([]byte{byte(st.Phase), byte(st.Kind)})
	digestWriteVec(h, &tmp, st.Pos.X, st.Pos.Y, st.Pos.Z)

	p := w.player
	digestWriteVec(h, &tmp, p.Pos.X, p.Pos.Y, p.Pos.Z)
	digestWriteVec(h, &tmp, p.Intent.Forward, p.Intent.Strafe, p.Intent.Yaw)
	digestWriteVec(h, &tmp, p.Vitals.Hunger, p.Vitals.Thirst)
	digestWriteI64(h, &tmp, int64(w.clock.Day))
	digestWriteVec(h, &tmp, w.clock.TimeOfDay)

	digestWriteU64(h, &tmp, uint64(len(w.instances)))
	for _, in := range w.instances {
		h.Write([]byte(in.ID))
		digestWriteVec(h, &tmp, in.Pos.X, in.Pos.Y, in.Pos.Z, in.Scale)
	}
	digestWriteU64(h, &tmp, uint64(len(w.structures)))
	for _, s := range w.structures {
		h.Write([]byte(s.ID))
		h.Write([]byte{byte(s.Kind)})
		digestWriteVec(h, &tmp, s.Pos.X, s.Pos.Y, s.Pos.Z)
		digestWriteU64(h, &tmp, s.Tick)
	}

	if b, err := w.harvestSrc.MarshalBinary(); err == nil {
		h.Write(b)
	}

	return hex.EncodeToString(h.Sum(nil))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func digestWriteVec(h hashWriter, tmp *[8]byte, vs ...float64) {
	for _, v := range vs {
		digestWriteU64(h, tmp, math.Float64bits(v))
	}
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
