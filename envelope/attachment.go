package envelope

import "github.com/gordian-core/gordian/dcbor"

// AddAttachment attaches an 'attachment' assertion whose object is payload
// wrapped as a Node carrying a 'vendor' assertion and, if conformsTo is
// non-empty, a 'conformsTo' assertion — spec.md's
// 'attachment' : (payload) ['vendor': <text>, 'conformsTo': <text>?] shape.
func (e *Envelope) AddAttachment(payload *Envelope, vendor, conformsTo string) (*Envelope, error) {
	vendorLeaf, err := NewLeaf(dcbor.NewText(vendor))
	if err != nil {
		return nil, err
	}
	obj := payload.AddAssertion(NewAssertion(NewKnownValue(KnownVendor), vendorLeaf))
	if conformsTo != "" {
		conformsLeaf, err := NewLeaf(dcbor.NewText(conformsTo))
		if err != nil {
			return nil, err
		}
		obj = obj.AddAssertion(NewAssertion(NewKnownValue(KnownConformsTo), conformsLeaf))
	}
	pred := NewKnownValue(KnownAttachment)
	return e.AddAssertion(NewAssertion(pred, obj)), nil
}

// Attachments returns every 'attachment' assertion's object on e, each
// still carrying its own 'vendor'/'conformsTo' sub-assertions.
func (e *Envelope) Attachments() []*Envelope {
	pred := NewKnownValue(KnownAttachment)
	var out []*Envelope
	for _, a := range e.AssertionsWithPredicate(pred) {
		out = append(out, a.obj)
	}
	return out
}

// AttachmentsWithVendor filters Attachments to those whose 'vendor'
// assertion's text matches vendor.
func (e *Envelope) AttachmentsWithVendor(vendor string) []*Envelope {
	var out []*Envelope
	for _, a := range e.Attachments() {
		for _, v := range a.AssertionsWithPredicate(NewKnownValue(KnownVendor)) {
			text, ok := v.obj.LeafValue()
			if !ok {
				continue
			}
			s, ok := text.AsText()
			if ok && s == vendor {
				out = append(out, a)
			}
		}
	}
	return out
}
