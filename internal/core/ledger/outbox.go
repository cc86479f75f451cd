package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/rl1809/mintmarket/internal/core/domain"
)

var (
	outboxHeadKey = Key(prefixOutboxCursor, []byte("head"))
	outboxTailKey = Key(prefixOutboxCursor, []byte("tail"))
)

// Entries between head (exclusive) and tail (inclusive) are pending.

type outboxEnvelope struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

// Enqueue records event in the outbox of the current transaction and returns
// its sequence number. The event commits or rolls back with the transaction.
func (s *State) Enqueue(event domain.Event) (uint64, error) {
	tail, err := s.readCursor(outboxTailKey)
	if err != nil {
		return 0, err
	}
	seq := tail + 1

	payload, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("encode event %s: %w", event.EventName(), err)
	}
	raw, err := json.Marshal(outboxEnvelope{Type: event.EventName(), Event: payload})
	if err != nil {
		return 0, fmt.Errorf("encode outbox entry %d: %w", seq, err)
	}

	if err := s.tx.Put(Key(prefixOutbox, Uint64Bytes(seq)), raw); err != nil {
		return 0, fmt.Errorf("write outbox entry %d: %w", seq, err)
	}
	if err := s.tx.Put(outboxTailKey, Uint64Bytes(seq)); err != nil {
		return 0, fmt.Errorf("write outbox tail: %w", err)
	}
	return seq, nil
}

// Outbox returns up to limit pending events, oldest first.
func (s *State) Outbox(limit int) ([]domain.EventRecord, error) {
	head, err := s.readCursor(outboxHeadKey)
	if err != nil {
		return nil, err
	}
	tail, err := s.readCursor(outboxTailKey)
	if err != nil {
		return nil, err
	}

	var records []domain.EventRecord
	for seq := head + 1; seq <= tail && len(records) < limit; seq++ {
		raw, err := s.tx.Get(Key(prefixOutbox, Uint64Bytes(seq)))
		if err != nil {
			return nil, fmt.Errorf("read outbox entry %d: %w", seq, err)
		}

		var env outboxEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode outbox entry %d: %w", seq, err)
		}
		ev, err := domain.DecodeEvent(env.Type, env.Event)
		if err != nil {
			return nil, fmt.Errorf("outbox entry %d: %w", seq, err)
		}
		records = append(records, domain.EventRecord{Seq: seq, Event: ev})
	}
	return records, nil
}

// Ack removes delivered entries up to and including seq. Acking an entry that
// is already gone is a no-op.
func (s *State) Ack(seq uint64) error {
	head, err := s.readCursor(outboxHeadKey)
	if err != nil {
		return err
	}
	tail, err := s.readCursor(outboxTailKey)
	if err != nil {
		return err
	}
	if seq <= head {
		return nil
	}
	if seq > tail {
		return fmt.Errorf("ack outbox entry %d: beyond tail %d", seq, tail)
	}

	for n := head + 1; n <= seq; n++ {
		if err := s.tx.Delete(Key(prefixOutbox, Uint64Bytes(n))); err != nil {
			return fmt.Errorf("delete outbox entry %d: %w", n, err)
		}
	}
	if err := s.tx.Put(outboxHeadKey, Uint64Bytes(seq)); err != nil {
		return fmt.Errorf("write outbox head: %w", err)
	}
	return nil
}

func (s *State) readCursor(key []byte) (uint64, error) {
	raw, err := s.tx.Get(key)
	if err != nil {
		return 0, fmt.Errorf("read outbox cursor: %w", err)
	}
	return BytesUint64(raw), nil
}
