// Package propdef describes entity properties: their wire names, capability
// flags, minimum protocol versions and value codecs.
//
// A *Definition is a property's identity. Definitions are declared once, as
// package-level variables of a catalogue package, and grouped into a Schema in
// declaration order:
//
//	var Subject = propdef.NewString("Subject", "item:Subject", propdef.Writable)
//	var Alias = propdef.NewString("Alias", "contacts:Alias", propdef.ReadOnly).
//		Since(propdef.Exchange2010SP2)
//
//	var Contact = propdef.NewSchema("Contact", xmlstream.Types.Name("Contact"),
//		propdef.ItemChanges, ItemID, Subject, Alias)
//
// # Values
//
// Scalar properties hold plain Go values: string, bool, int, float64,
// time.Time, []byte, uuid.UUID or an enumeration type. Composite properties
// hold a value implementing ComplexValue, which reports its own mutations
// through the func passed to Attach. Embed Tracked to get that behaviour.
package propdef
