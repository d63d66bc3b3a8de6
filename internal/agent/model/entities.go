package model

// EntitySet holds the structured fields extracted from free-text user turns.
// Zero values mean "not yet known". Fields never regress to unknown once
// populated: Merge only overwrites with non-zero incoming values.
type EntitySet struct {
	Location     string   `json:"location,omitempty"`
	Budget       int64    `json:"budget,omitempty"` // EGP
	PropertyType string   `json:"property_type,omitempty"`
	Bedrooms     int      `json:"bedrooms,omitempty"`
	Features     []string `json:"features,omitempty"`
	Name         string   `json:"name,omitempty"`
	Phone        string   `json:"phone,omitempty"`
}

// Merge returns a copy of e with every non-zero field of in applied on top.
// Features accumulate rather than replace.
func (e EntitySet) Merge(in EntitySet) EntitySet {
	out := e
	if in.Location != "" {
		out.Location = in.Location
	}
	if in.Budget > 0 {
		out.Budget = in.Budget
	}
	if in.PropertyType != "" {
		out.PropertyType = in.PropertyType
	}
	if in.Bedrooms > 0 {
		out.Bedrooms = in.Bedrooms
	}
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Phone != "" {
		out.Phone = in.Phone
	}
	for _, f := range in.Features {
		if !containsString(out.Features, f) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// CoreComplete reports whether the three discovery fields are all known.
func (e EntitySet) CoreComplete() bool {
	return e.Location != "" && e.Budget > 0 && e.PropertyType != ""
}

// HasContact reports whether both contact fields were captured. Capturing
// both triggers the closing override in the phase machine.
func (e EntitySet) HasContact() bool {
	return e.Name != "" && e.Phone != ""
}

// Signals are per-turn conversational cues. Unlike EntitySet fields they
// are not persisted: each turn starts with a clean set.
type Signals struct {
	Objection    bool
	Acceptance   bool
	Confirmation bool
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
