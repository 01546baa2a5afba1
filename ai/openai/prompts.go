package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/infobot/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "core_concepts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "concept": {
            "type": "string",
            "pattern": "^[a-z0-9]+( [a-z0-9]+)*$"
          },
          "type": {
            "type": "string"
          },
          "importance": {
            "type": "integer",
            "minimum": 1,
            "maximum": 10
          }
        },
        "required": ["concept", "type", "importance"],
        "additionalProperties": false
      }
    }
  },
  "required": ["core_concepts"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract the entities and themes a reader would search for in the given passage and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Concept names must be lowercase, 1-3 words, singular form only. Keep acronyms as written but lowercased.
- Type field must match exactly one of the listed values: %s.
- Importance is an integer from 1 (passing mention) to 10 (the passage is about it).
- Include only concepts that are explicitly mentioned or clearly implied by the passage. Do not hallucinate.
- Prefer named entities (organizations, people, places, events) over generic nouns.
- If no concepts can be identified, return "core_concepts": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "International Islamic University Chittagong (IIUC) was established in 1995 in Kumira, Chittagong."
Output:
{
  "core_concepts": [
    {"concept":"iiuc","type":"organization","importance":10},
    {"concept":"chittagong","type":"place","importance":7},
    {"concept":"kumira","type":"place","importance":6},
    {"concept":"1995","type":"date","importance":6}
  ]
}

Example (question style, no punctuation):
Input: "who founded the university"
Output:
{
  "core_concepts": [
    {"concept":"founder","type":"role","importance":9},
    {"concept":"university","type":"organization","importance":8}
  ]
}`

// buildExtractionPrompt creates the system prompt with concept types embedded.
func buildExtractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.ConceptTypes, ", "))
}
