// Package propbag implements the property store of an entity and its change
// tracking.
//
// A Bag holds the values loaded from the wire or assigned by the caller, and
// records which properties changed since the last load or save. The change
// sets drive the update markup written by package update.
//
// # State Machine
//
// Each property of a bag is in one of five states:
//
//	Unset ──set──→ Added ─────nil─────┐
//	  │                               ↓
//	 load                          Deleted ──set──→ Modified
//	  ↓                               ↑
//	Loaded ──set──→ Modified ──nil────┘
//	  │                               ↑
//	  └──────────────nil──────────────┘
//
// State transitions:
//   - Unset: No value and no pending change
//   - Loaded: Value received from the wire, no pending change
//   - Added: First assignment of a property that had no value
//   - Modified: A held value was replaced or mutated in place
//   - Deleted: Value removed; the prior value is kept for the update
//
// A property is in at most one of the added, modified and deleted sets.
// Reading an AutoInstantiateOnRead property that has no value assigns a new
// empty value and follows the same transitions as Set.
//
// # Composite Values
//
// Values implementing propdef.Composite are attached to the bag when stored
// and report in-place mutations through the attached func. A loaded composite
// moves to Modified on its first mutation. Notifications from a composite
// that was replaced or deleted are ignored, and a composite may notify while
// the bag is still attaching it.
//
// # Usage
//
//	bag := propbag.New(owner)
//	if err := bag.Load(r, propbag.LoadOptions{Requested: set}); err != nil {
//	    return err
//	}
//	if err := bag.Set(schema.Subject, "Quarterly report"); err != nil {
//	    return err
//	}
//	err := update.WriteChange(w, bag)
package propbag
