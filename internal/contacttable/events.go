package contacttable

// EventKind identifies what a table Event describes.
type EventKind int

const (
	// EventRowInserted: a row now exists at Row; rows at or after it moved down by one.
	EventRowInserted EventKind = iota
	// EventRowChanged: values at Row changed in place. Column is -1 for the whole row.
	EventRowChanged
	// EventRowsRemoved: rows [First, End) as indexed before the removal are gone.
	EventRowsRemoved
	// EventTableReset: the whole table was rebuilt.
	EventTableReset
	// EventDefaultAddressChanged: the wallet's primary receiving address is now Address.
	EventDefaultAddressChanged
)

func (k EventKind) String() string {
	switch k {
	case EventRowInserted:
		return "row-inserted"
	case EventRowChanged:
		return "row-changed"
	case EventRowsRemoved:
		return "rows-removed"
	case EventTableReset:
		return "table-reset"
	case EventDefaultAddressChanged:
		return "default-address-changed"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind    EventKind
	Row     int
	Column  int
	First   int
	End     int
	Address string
}

// Listener receives table events on the goroutine that mutated the table, after the
// mutation has been applied, in mutation order.
type Listener func(Event)

type listenerSet struct {
	nextID    int
	listeners map[int]Listener
	order     []int
}

func (s *listenerSet) add(fn Listener) func() {
	if s.listeners == nil {
		s.listeners = make(map[int]Listener)
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	return func() {
		if _, ok := s.listeners[id]; !ok {
			return
		}
		delete(s.listeners, id)
		// A new slice, so an emit in progress keeps iterating the old order.
		order := make([]int, 0, len(s.order))
		for _, v := range s.order {
			if v != id {
				order = append(order, v)
			}
		}
		s.order = order
	}
}

func (s *listenerSet) emit(ev Event) {
	for _, id := range s.order {
		if fn, ok := s.listeners[id]; ok {
			fn(ev)
		}
	}
}
