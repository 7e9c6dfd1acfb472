package engine

import "encoding/json"

// Wire format mirrors the conventional rich-text JSON shape: type, attrs,
// marks, text, content.

type markJSON struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

type nodeJSON struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []markJSON     `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
	Content []*nodeJSON    `json:"content,omitempty"`
}

func toJSON(n *Node) *nodeJSON {
	out := &nodeJSON{Type: n.Type, Attrs: n.Attrs, Text: n.Text}
	for _, m := range n.Marks {
		out.Marks = append(out.Marks, markJSON{Type: m.Type, Attrs: m.Attrs})
	}
	for _, c := range n.Content {
		out.Content = append(out.Content, toJSON(c))
	}
	return out
}

func fromJSON(j *nodeJSON) *Node {
	n := &Node{Type: j.Type, Attrs: j.Attrs, Text: j.Text}
	for _, m := range j.Marks {
		n.Marks = append(n.Marks, Mark{Type: m.Type, Attrs: m.Attrs})
	}
	for _, c := range j.Content {
		n.Content = append(n.Content, fromJSON(c))
	}
	return n
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(n))
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var j nodeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*n = *fromJSON(&j)
	return nil
}
