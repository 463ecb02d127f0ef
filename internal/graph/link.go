package graph

import (
	"fmt"

	"github.com/specialistvlad/opgraph/internal/operation"
)

// Link is a directed data-flow edge from one operation's output to
// another operation's input. Links are values and never change once
// created.
type Link struct {
	Source       *operation.Operation
	SourceOutput string
	Dest         *operation.Operation
	DestInput    string
}

func (l Link) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", l.Source, l.SourceOutput, l.Dest, l.DestInput)
}

// port addresses one input of one instance.
type port struct {
	op    operation.ID
	input string
}

func (l Link) destPort() port {
	return port{op: l.Dest.ID(), input: l.DestInput}
}
