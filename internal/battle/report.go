package battle

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/QirangMilco/TSAuto/internal/event"
)

// Digest is an event sink that hashes the event stream with BLAKE2b-256.
// Two battles with the same seed and the same actions produce the same sum.
type Digest struct {
	h     hash.Hash
	count int
}

// NewDigest creates an empty digest.
func NewDigest() *Digest {
	d := &Digest{}
	d.Reset()
	return d
}

// Publish implements event.Sink.
func (d *Digest) Publish(ev event.Event) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		slog.Error("digest: encode payload", "kind", ev.Kind, "seq", ev.Seq, "error", err)
		return
	}
	fmt.Fprintf(d.h, "%d|%d|%s|", ev.Seq, ev.Round, ev.Kind)
	d.h.Write(payload)
	d.h.Write([]byte{'\n'})
	d.count++
}

// Sum returns the hex digest of every event published so far.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Count returns the number of hashed events.
func (d *Digest) Count() int {
	return d.count
}

// Reset clears the digest.
func (d *Digest) Reset() {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	d.h = h
	d.count = 0
}

// Report summarises a battle for storage and comparison.
type Report struct {
	BattleID     string
	EncounterID  string
	Seed         int64
	Result       string
	Rounds       int
	TotalActions int
	EventCount   int
	Digest       string
	Events       []event.Event
	CreatedAt    time.Time
}

// Report summarises the battle so far.
func (e *Engine) Report() Report {
	r := Report{
		BattleID:    e.cfg.BattleID,
		EncounterID: e.cfg.EncounterID,
		Seed:        e.cfg.Seed,
		EventCount:  e.digest.Count(),
		Digest:      e.digest.Sum(),
		Events:      e.recorder.Events(),
		CreatedAt:   time.Now().UTC(),
	}
	if e.state != nil {
		r.Result = e.state.Result.String()
		r.Rounds = e.state.Round
		r.TotalActions = e.state.TotalActions
	}
	return r
}
