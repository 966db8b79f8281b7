package entity

type Prompt struct {
	ID   string
	Text string
}

const actionSchemaPrompt = `Return ONLY valid JSON. No markdown. No explanation.

Supported actions:
- create_vm
- create_storage

Schema:
{
  "action": "create_vm|create_storage",
  "rg_name": "ai-rg",
  "location": "Central India",
  "vm_name": "ai-vm",
  "vm_size": "Standard_B1s",
  "storage_account_name": "aistorage1234"
}

Rules:
- Always output JSON ONLY
- Never return empty rg_name or location; use defaults
- Use double quotes only
- No trailing commas
`

// ActionSchemaPrompt is sent as system instructions on every model call.
var ActionSchemaPrompt = Prompt{
	ID:   "action_schema",
	Text: actionSchemaPrompt,
}

// JSONOnlyPrompt re-asks the original question when the model answered
// without any JSON object.
func JSONOnlyPrompt(userPrompt string) string {
	return "Return JSON only: " + userPrompt
}

// FixJSONPrompt asks the model to correct its own malformed output.
func FixJSONPrompt(repaired string) string {
	return "Fix JSON strictly, output only JSON:\n" + repaired
}
