package infrahub

// BranchRef identifies a backend branch.
type BranchRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// ObjectRef identifies a node created in the backend graph.
type ObjectRef struct {
	ID string `json:"id"`
}

// ChangeRef identifies a proposed change, with the review URL callers open.
type ChangeRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Location is a metro location a data center can be placed in.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider is an organization that can host a data center.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DesignElement is one device class within a design, with the number of
// devices the generator materializes for it.
type DesignElement struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	DeviceType string `json:"device_type"`
	Quantity   int    `json:"quantity"`
}

// Design is a reusable fabric blueprint.
type Design struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Elements []DesignElement `json:"elements,omitempty"`
}

// DeviceCount returns how many devices generating this design produces.
func (d Design) DeviceCount() int {
	total := 0
	for _, e := range d.Elements {
		total += e.Quantity
	}
	return total
}

// Prefix is an IPAM prefix available for assignment.
type Prefix struct {
	ID     string `json:"id"`
	Prefix string `json:"prefix"`
	Role   string `json:"role,omitempty"`
}

// DataCenter is a summarized topology node for catalog listings.
type DataCenter struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Strategy    string `json:"strategy"`
	Emulation   bool   `json:"emulation"`
	Location    string `json:"location,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// ProposedChange is a review artifact summary for catalog listings.
type ProposedChange struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	SourceBranch      string `json:"source_branch"`
	DestinationBranch string `json:"destination_branch"`
	State             string `json:"state,omitempty"`
	URL               string `json:"url"`
}

// Attribute and relationship envelopes used when decoding graph responses.

type textValue struct {
	Value string `json:"value"`
}

type boolValue struct {
	Value bool `json:"value"`
}

type intValue struct {
	Value int `json:"value"`
}

type relatedNode struct {
	Node struct {
		DisplayLabel string `json:"display_label"`
	} `json:"node"`
}
