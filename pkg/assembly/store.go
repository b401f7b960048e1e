package assembly

import (
	"errors"
	"fmt"
	"sync"

	"girder/pkg/part"
	"girder/pkg/spatial"
)

// Sentinel errors returned by store commands. Commands never mutate
// state when they return a non-nil error.
var (
	ErrPartNotFound  = errors.New("part not found")
	ErrNotStructural = errors.New("part type cannot bear joints")
	ErrStripLength   = fmt.Errorf("strip length must be in [%d, %d]", part.MinStripLength, part.MaxStripLength)
)

// defaultPalette colors new parts when the caller does not pick one.
var defaultPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// fastenerColor is the fixed color of engine-created screws and nuts.
const fastenerColor = "#95A5A6"

// Store is the mutable authoritative assembly state. It has an explicit
// lifecycle (New) and no global instance. A mutex serializes the
// read-compute-publish sequence of each command so the store is also
// safe under a multi-goroutine host, though the intended use is a
// single logical actor.
type Store struct {
	mu        sync.Mutex
	parts     map[PartID]*Part
	order     []PartID
	joints    []*Joint
	selected  PartID
	pending   *HoleRef
	version   uint64
	palette   []string
	nextColor int
	subs      []func()
}

// New returns an empty store.
func New() *Store {
	return &Store{parts: make(map[PartID]*Part)}
}

// SetPalette replaces the color cycle assigned to parts added without
// an explicit color, and restarts the cycle. An empty palette keeps the
// default one. Configuration, not assembly state: the version does not
// change and subscribers are not notified.
func (s *Store) SetPalette(colors []string) {
	if len(colors) == 0 {
		return
	}
	s.mu.Lock()
	s.palette = append([]string(nil), colors...)
	s.nextColor = 0
	s.mu.Unlock()
}

// Subscribe registers a callback invoked after every mutating command.
// Callbacks run outside the store lock and may call query methods.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// notify runs subscriber callbacks. Call without holding the lock.
func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Version returns the current state version. It increments once per
// completed mutating command.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Parts returns the placed parts in insertion order, as value copies.
func (s *Store) Parts() []Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partsLocked()
}

func (s *Store) partsLocked() []Part {
	out := make([]Part, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.parts[id])
	}
	return out
}

// Joints returns the joints in creation order, as value copies.
func (s *Store) Joints() []Joint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jointsLocked()
}

func (s *Store) jointsLocked() []Joint {
	out := make([]Joint, 0, len(s.joints))
	for _, j := range s.joints {
		out = append(out, *j)
	}
	return out
}

// Part returns a value copy of one part.
func (s *Store) Part(id PartID) (Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[id]
	if !ok {
		return Part{}, fmt.Errorf("%w: %s", ErrPartNotFound, id.Short())
	}
	return *p, nil
}

// MustPart returns a value copy of one part or panics. Test helper.
func (s *Store) MustPart(id PartID) Part {
	p, err := s.Part(id)
	if err != nil {
		panic(err)
	}
	return p
}

// SelectedPart returns the selected part id, or the zero id.
func (s *Store) SelectedPart() PartID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// PendingHole returns the in-progress pairing hole, or nil.
func (s *Store) PendingHole() *HoleRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	ref := *s.pending
	return &ref
}

// Snapshot returns a value copy of the complete state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Parts:        s.partsLocked(),
		Joints:       s.jointsLocked(),
		SelectedPart: s.selected,
		Version:      s.version,
	}
	if s.pending != nil {
		ref := *s.pending
		snap.Pending = &ref
	}
	return snap
}

// jointCountLocked returns how many joints touch the part.
func (s *Store) jointCountLocked(id PartID) int {
	n := 0
	for _, j := range s.joints {
		if j.Touches(id) {
			n++
		}
	}
	return n
}

// anchoredLocked reports whether the part participates in at least one joint.
func (s *Store) anchoredLocked(id PartID) bool {
	return s.jointCountLocked(id) > 0
}

// addPartLocked inserts a part and keeps insertion order.
func (s *Store) addPartLocked(p *Part) {
	s.parts[p.ID] = p
	s.order = append(s.order, p.ID)
}

// AddPart places a new part. Strip lengths outside [3, 25] are
// rejected; non-strip types ignore Length. A zero rotation is treated
// as identity and an empty color is assigned from the palette.
func (s *Store) AddPart(t part.Type, props InitialProps) (PartID, error) {
	s.mu.Lock()

	length := 0
	if t == part.Strip {
		length = props.Length
		if length < part.MinStripLength || length > part.MaxStripLength {
			s.mu.Unlock()
			return "", fmt.Errorf("add part: %w (got %d)", ErrStripLength, props.Length)
		}
	}

	color := props.Color
	if color == "" {
		pal := s.palette
		if len(pal) == 0 {
			pal = defaultPalette
		}
		color = pal[s.nextColor%len(pal)]
		s.nextColor++
	}

	p := &Part{
		ID:       NewPartID(),
		Type:     t,
		Length:   length,
		Position: props.Position,
		Rotation: props.Rotation.Normalize(),
		Color:    color,
	}
	s.addPartLocked(p)
	s.version++
	s.mu.Unlock()

	s.notify()
	return p.ID, nil
}

// UpdatePart applies a partial update. Nil fields are left unchanged.
// Length patches are only legal on strips and stay bounds-checked.
func (s *Store) UpdatePart(id PartID, props PartialProps) error {
	s.mu.Lock()
	p, ok := s.parts[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update part: %w: %s", ErrPartNotFound, id.Short())
	}
	if props.Length != nil {
		if p.Type != part.Strip {
			s.mu.Unlock()
			return fmt.Errorf("update part: length is only meaningful for strips (part is %s)", p.Type)
		}
		if *props.Length < part.MinStripLength || *props.Length > part.MaxStripLength {
			s.mu.Unlock()
			return fmt.Errorf("update part: %w (got %d)", ErrStripLength, *props.Length)
		}
		p.Length = *props.Length
	}
	if props.Position != nil {
		p.Position = *props.Position
	}
	if props.Rotation != nil {
		p.Rotation = props.Rotation.Normalize()
	}
	if props.Color != nil {
		p.Color = *props.Color
	}
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// RemovePart deletes a part, every joint referencing it, and any
// selection state pointing at it. Fasteners created alongside those
// joints are left in place; Validate reports them as orphan warnings.
func (s *Store) RemovePart(id PartID) error {
	s.mu.Lock()
	if _, ok := s.parts[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove part: %w: %s", ErrPartNotFound, id.Short())
	}

	delete(s.parts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	kept := s.joints[:0]
	for _, j := range s.joints {
		if !j.Touches(id) {
			kept = append(kept, j)
		}
	}
	s.joints = kept

	if s.selected == id {
		s.selected = ""
	}
	if s.pending != nil && s.pending.Part == id {
		s.pending = nil
	}
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// SelectPart sets the selected part. The zero id clears the selection.
// Selecting operates independently of the hole-pairing state machine.
func (s *Store) SelectPart(id PartID) error {
	s.mu.Lock()
	if !id.IsZero() {
		if _, ok := s.parts[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("select part: %w: %s", ErrPartNotFound, id.Short())
		}
	}
	s.selected = id
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// ResetSelection clears both the selected part and any pending hole.
func (s *Store) ResetSelection() {
	s.mu.Lock()
	s.selected = ""
	s.pending = nil
	s.version++
	s.mu.Unlock()

	s.notify()
}

// ClearAll empties parts, joints, and both selections.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.parts = make(map[PartID]*Part)
	s.order = nil
	s.joints = nil
	s.selected = ""
	s.pending = nil
	s.version++
	s.mu.Unlock()

	s.notify()
}

// SelectHole drives the hole-pairing state machine:
//
//   - no pending hole: the click becomes the pending hole;
//   - same (part, hole) clicked again: pending clears (toggle off);
//   - different part clicked: snap-assemble the two parts, clear the
//     pending hole, and select the clicked part;
//   - same part, different hole: the click replaces the pending hole
//     (self-pairing is not permitted).
func (s *Store) SelectHole(id PartID, hole int) error {
	s.mu.Lock()
	p, ok := s.parts[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("select hole: %w: %s", ErrPartNotFound, id.Short())
	}
	if !p.Type.Structural() {
		s.mu.Unlock()
		return fmt.Errorf("select hole: %w (%s)", ErrNotStructural, p.Type)
	}
	if _, err := part.HoleOffset(p.Type, hole, p.Length); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("select hole: %w", err)
	}

	switch {
	case s.pending == nil:
		s.pending = &HoleRef{Part: id, Hole: hole}

	case s.pending.Part == id && s.pending.Hole == hole:
		s.pending = nil

	case s.pending.Part != id:
		a := *s.pending
		b := HoleRef{Part: id, Hole: hole}
		if err := s.assembleLocked(a, b); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("select hole: %w", err)
		}
		s.pending = nil
		s.selected = id

	default:
		// Same part, different hole: re-select.
		s.pending = &HoleRef{Part: id, Hole: hole}
	}

	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}

// RotatePart rotates a part about its own local Z axis by delta
// radians, subject to joint constraints: free parts spin in place, a
// part with one joint sweeps around the joined hole, and a part with
// two or more joints is fully constrained and does not move at all
// (a deliberate no-op, not an error).
func (s *Store) RotatePart(id PartID, delta float64) error {
	s.mu.Lock()
	p, ok := s.parts[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("rotate part: %w: %s", ErrPartNotFound, id.Short())
	}

	var joined []*Joint
	for _, j := range s.joints {
		if j.Touches(id) {
			joined = append(joined, j)
		}
	}
	if len(joined) >= 2 {
		s.mu.Unlock()
		return nil
	}

	spun := p.Rotation.Mul(spatial.AxisAngle(spatial.UnitZ, delta)).Normalize()
	if len(joined) == 0 {
		p.Rotation = spun
	} else if err := s.rotateConstrainedLocked(p, joined[0], spun); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("rotate part: %w", err)
	}
	s.version++
	s.mu.Unlock()

	s.notify()
	return nil
}
