package observer

// Changes fans change events out to registered ChangeObservers, buffering
// them while a batch is open.
//
// The zero value is ready to use. Registration is safe from any goroutine;
// Notify, BeginBatch and EndBatch belong to the collection's single writer.
type Changes struct {
	Registry[ChangeObserver]

	depth   int
	pending []Change
}

// Notify delivers c now, or buffers it if a batch is open.
func (c *Changes) Notify(ch Change) {
	if ch.Kind != KindChanged && ch.Count <= 0 {
		return
	}
	if c.depth > 0 {
		c.pending = append(c.pending, ch)
		return
	}
	c.deliver(ch)
}

// BeginBatch opens a batch. Batches nest; only the outermost EndBatch flushes.
func (c *Changes) BeginBatch() {
	c.depth++
}

// EndBatch closes a batch and flushes the coalesced events when the outermost
// batch closes.
func (c *Changes) EndBatch() {
	if c.depth == 0 {
		return
	}
	c.depth--
	if c.depth > 0 {
		return
	}
	pending := c.pending
	c.pending = nil
	for _, ch := range Coalesce(pending) {
		c.deliver(ch)
	}
}

// Batching reports whether a batch is open.
func (c *Changes) Batching() bool {
	return c.depth > 0
}

func (c *Changes) deliver(ch Change) {
	c.Each(func(o ChangeObserver) { ch.Deliver(o) })
}

// Coalesce merges a sequence of changes into a shorter sequence with the same
// net effect. Adjacent ranges of the same kind are joined, and a removal
// followed by an insertion at the same position becomes a range change over
// the overlap plus the difference. Any bulk change collapses the whole
// sequence into a single Changed.
func Coalesce(in []Change) []Change {
	for _, ch := range in {
		if ch.Kind == KindChanged {
			return []Change{{Kind: KindChanged}}
		}
	}

	var out []Change
	for _, ch := range in {
		if ch.Count <= 0 {
			continue
		}
		out = push(out, ch)
	}
	return out
}

func push(out []Change, ch Change) []Change {
	n := len(out)
	if n == 0 {
		return append(out, ch)
	}
	last := out[n-1]

	if merged, ok := merge(last, ch); ok {
		return push(out[:n-1], merged)
	}

	if last.Kind == KindRangeRemoved && ch.Kind == KindRangeInserted && last.Start == ch.Start {
		out = out[:n-1]
		shared := min(last.Count, ch.Count)
		out = push(out, Updated(ch.Start, shared))
		switch {
		case ch.Count > shared:
			out = push(out, Inserted(ch.Start+shared, ch.Count-shared))
		case last.Count > shared:
			out = push(out, Removed(ch.Start+shared, last.Count-shared))
		}
		return out
	}

	return append(out, ch)
}

func merge(last, ch Change) (Change, bool) {
	if last.Kind != ch.Kind {
		return Change{}, false
	}
	switch ch.Kind {
	case KindRangeInserted:
		if ch.Start >= last.Start && ch.Start <= last.Start+last.Count {
			return Inserted(last.Start, last.Count+ch.Count), true
		}
	case KindRangeRemoved:
		if last.Start >= ch.Start && last.Start <= ch.Start+ch.Count {
			return Removed(ch.Start, last.Count+ch.Count), true
		}
	case KindRangeChanged:
		if ch.Start <= last.Start+last.Count && ch.Start+ch.Count >= last.Start {
			start := min(last.Start, ch.Start)
			end := max(last.Start+last.Count, ch.Start+ch.Count)
			return Updated(start, end-start), true
		}
	}
	return Change{}, false
}
