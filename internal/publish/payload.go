package publish

import (
	"github.com/specialistvlad/opgraph/internal/intent"
	"github.com/specialistvlad/opgraph/internal/workflow"
)

// OperationResult is the published state of one operation.
type OperationResult struct {
	ID      string         `json:"id"`
	Label   string         `json:"label,omitempty"`
	Type    string         `json:"type"`
	Status  string         `json:"status"`
	Inputs  map[string]any `json:"inputs,omitempty"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// IntentPayload is one materialized intent.
type IntentPayload struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	OperationID string         `json:"operation_id"`
	Operation   string         `json:"operation"`
	Values      map[string]any `json:"values"`
}

// Payload is the published form of a whole run.
type Payload struct {
	Workflow   string            `json:"workflow"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	Operations []OperationResult `json:"operations"`
	Intents    []IntentPayload   `json:"intents"`
}

// NewPayload flattens res. Operations appear in run order.
func NewPayload(name string, res *workflow.Result) Payload {
	p := Payload{
		Workflow:   name,
		Status:     res.Status.String(),
		Operations: make([]OperationResult, 0, len(res.Order)),
		Intents:    make([]IntentPayload, 0, len(res.Intents)),
	}
	if res.Err != nil {
		p.Error = res.Err.Error()
	}

	for _, op := range res.Order {
		r := OperationResult{
			ID:     string(op.ID()),
			Label:  op.Label(),
			Type:   op.Name(),
			Status: res.OperationStatus(op).String(),
		}
		r.Inputs, _ = res.Inputs(op)
		r.Outputs, _ = res.Outputs(op)
		if err := res.OperationError(op); err != nil {
			r.Error = err.Error()
		}
		p.Operations = append(p.Operations, r)
	}

	for _, in := range res.Intents {
		p.Intents = append(p.Intents, fromIntent(in))
	}
	return p
}

func fromIntent(in intent.Intent) IntentPayload {
	return IntentPayload{
		Kind:        string(in.Kind),
		Name:        in.Name,
		OperationID: in.Source.OperationID,
		Operation:   in.Source.Operation,
		Values:      in.Values,
	}
}
