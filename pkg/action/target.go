package action

import "strings"

// TargetDescriptor names one target an element declares for a controller.
// The identifier comes from the attribute name (data-<identifier>-target),
// the target names from the attribute value tokens.
type TargetDescriptor struct {
	// Identifier is the controller identifier owning the target.
	Identifier string
	// TargetName is the name the controller looks the element up by.
	TargetName string
}

// String renders the descriptor as "identifier.targetName".
func (d TargetDescriptor) String() string {
	return d.Identifier + "." + d.TargetName
}

// ParseTargetTokens expands a target attribute value into one descriptor per
// token. An element may serve several target roles at once
// (data-gallery-target="slide current").
func ParseTargetTokens(identifier, value string) []TargetDescriptor {
	var out []TargetDescriptor
	for _, token := range strings.Fields(value) {
		out = append(out, TargetDescriptor{Identifier: identifier, TargetName: token})
	}
	return out
}
