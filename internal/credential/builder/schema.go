package builder

// benefitClaimsSchema declares the required/optional split for award
// claims: benefit type and amount are mandatory, breakdown and totals are
// optional.
const benefitClaimsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "PIP benefit claims",
  "type": "object",
  "required": ["benefitType", "amount"],
  "properties": {
    "benefitType": {
      "type": "string",
      "minLength": 1
    },
    "amount": {
      "type": "string",
      "minLength": 1
    },
    "components": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "amount"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "amount": {"type": "string", "minLength": 1}
        },
        "additionalProperties": false
      }
    },
    "totals": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  },
  "additionalProperties": false
}`
