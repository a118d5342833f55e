// Package ewscore provides the property store and wire codec of an Exchange
// Web Services style object model in pure Go.
//
// The library follows the sans-IO pattern: it decodes entity elements from a
// response body and encodes create and update payloads into a request body,
// with no transport code. Callers bring their own HTTP client and envelope.
//
// # Architecture
//
// The library is organized into layers:
//
//   - xmlstream: qualified names, a pull reader and a writer for the wire format
//   - propdef: versions, capability flags, property definitions and schemas
//   - propset: the property set a request asks for and the shape it writes
//   - propbag: per-entity values and their added, modified and deleted sets
//   - update: partial update payloads built from a bag's change sets
//   - entity: entity handles and a registry that decodes by element name
//   - schema: a sample catalogue of items, messages, contacts and folders
//
// # Basic Usage
//
//	r := xmlstream.NewReader(body)
//	if err := r.Read(); err != nil {
//	    return err
//	}
//	if ok, err := r.ReadToDescendant(xmlstream.Messages, "Items"); !ok {
//	    return err
//	}
//	items, err := schema.NewRegistry().LoadAll(r, propdef.Exchange2013, propbag.LoadOptions{
//	    Requested: propset.FirstClass,
//	})
//
//	msg := items[0]
//	if err := msg.Set(schema.Subject, "Re: lunch"); err != nil {
//	    return err
//	}
//	w := xmlstream.NewWriter(req)
//	err = update.WriteChanges(w, msg.Bag())
//
// # Reference
//
// Protocol documentation: https://learn.microsoft.com/en-us/exchange/client-developer/web-service-reference/ews-reference-for-exchange
package ewscore

// Version is the library version.
const Version = "0.1.0-dev"
